package acceptance

import (
	"net/http"
	"strconv"

	"github.com/twinside/backend/internal/dto"
)

func (s *Suite) TestWithdraw_Flow() {
	cookie := s.registerConfirmed("earner@example.com", "earner")
	s.setBalance("earner@example.com", 1000)

	resp := s.postJSON("/billing/withdraw", dto.WithdrawRequest{Amount: 1000, Wallet: "TWallet123"}, cookie)
	s.Equal(http.StatusOK, resp.StatusCode)

	var withdraw dto.WithdrawResponse
	s.decode(resp, &withdraw)
	s.True(withdraw.OK)
	s.NotZero(withdraw.ID)

	// commission is taken on creation, the balance only moves at settlement
	var amount int64
	var status string
	err := s.Postgres.DB.QueryRow(`SELECT amount, status FROM withdraws WHERE id = $1`, withdraw.ID).Scan(&amount, &status)
	s.Require().NoError(err)
	s.Equal(int64(800), amount)
	s.Equal("pending", status)
	s.Equal(int64(1000), s.balance("earner@example.com"))

	admin := s.adminLogin()

	settle := s.patchJSON("/api/admin/withdraw/"+strconv.FormatInt(withdraw.ID, 10),
		map[string]string{"tx_hash": "0xdeadbeef"}, admin)
	settle.Body.Close()
	s.Equal(http.StatusOK, settle.StatusCode)

	s.Equal(int64(200), s.balance("earner@example.com"))

	err = s.Postgres.DB.QueryRow(`SELECT status FROM withdraws WHERE id = $1`, withdraw.ID).Scan(&status)
	s.Require().NoError(err)
	s.Equal("done", status)

	var ledger int64
	err = s.Postgres.DB.QueryRow(`
		SELECT amount FROM transactions
		WHERE account_id = $1 AND type = 'withdraw'`, s.accountID("earner@example.com")).Scan(&ledger)
	s.Require().NoError(err)
	s.Equal(int64(-800), ledger)
}

func (s *Suite) TestWithdraw_InsufficientFunds() {
	cookie := s.registerConfirmed("broke@example.com", "broke")
	s.setBalance("broke@example.com", 100)

	resp := s.postJSON("/billing/withdraw", dto.WithdrawRequest{Amount: 500, Wallet: "TWallet123"}, cookie)
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	s.Equal("insufficient_funds", errResp.Error)
}

func (s *Suite) TestWithdraw_WalletRequired() {
	cookie := s.registerConfirmed("nowallet@example.com", "nowallet")
	s.setBalance("nowallet@example.com", 1000)

	resp := s.postJSON("/billing/withdraw", dto.WithdrawRequest{Amount: 500}, cookie)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestWithdraw_Reject_KeepsBalance() {
	cookie := s.registerConfirmed("denied@example.com", "denied")
	s.setBalance("denied@example.com", 1000)

	resp := s.postJSON("/billing/withdraw", dto.WithdrawRequest{Amount: 1000, Wallet: "TWallet123"}, cookie)
	var withdraw dto.WithdrawResponse
	s.decode(resp, &withdraw)

	admin := s.adminLogin()

	reject := s.patchJSON("/api/admin/withdraw/"+strconv.FormatInt(withdraw.ID, 10),
		map[string]any{"reject": true, "reason": "unverified wallet"}, admin)
	reject.Body.Close()
	s.Equal(http.StatusOK, reject.StatusCode)

	s.Equal(int64(1000), s.balance("denied@example.com"))

	var status string
	err := s.Postgres.DB.QueryRow(`SELECT status FROM withdraws WHERE id = $1`, withdraw.ID).Scan(&status)
	s.Require().NoError(err)
	s.Equal("rejected", status)
}

func (s *Suite) TestManualCredit() {
	s.registerConfirmed("lucky@example.com", "lucky")

	admin := s.adminLogin()

	resp := s.postJSON("/api/admin/manual-credit", dto.ManualCreditRequest{
		Email:       "lucky@example.com",
		Amount:      500,
		Description: "support compensation",
	}, admin)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	s.Equal(int64(500), s.balance("lucky@example.com"))

	var count int
	err := s.Postgres.DB.QueryRow(`
		SELECT COUNT(*) FROM transactions
		WHERE account_id = $1 AND type = 'manual' AND amount = 500`,
		s.accountID("lucky@example.com")).Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *Suite) TestGrantPremium() {
	s.registerConfirmed("vip@example.com", "vip")

	admin := s.adminLogin()
	id := s.accountID("vip@example.com")

	resp := s.postJSON("/api/admin/premium", dto.GrantPremiumRequest{UserID: id, Days: 30}, admin)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var premium bool
	err := s.Postgres.DB.QueryRow(`SELECT premium FROM accounts WHERE id = $1`, id).Scan(&premium)
	s.Require().NoError(err)
	s.True(premium)
}

func (s *Suite) TestFinanceStats() {
	admin := s.adminLogin()

	resp := s.get("/api/admin/stats/finance", admin)
	s.Equal(http.StatusOK, resp.StatusCode)

	var stats struct {
		OK    bool           `json:"ok"`
		Stats map[string]any `json:"stats"`
	}
	s.decode(resp, &stats)
	s.True(stats.OK)
	s.NotEmpty(stats.Stats)
}
