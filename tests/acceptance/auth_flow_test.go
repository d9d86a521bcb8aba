package acceptance

import (
	"io"
	"net/http"
	"sync"

	"github.com/twinside/backend/internal/dto"
)

func (s *Suite) TestRegister_Success() {
	resp := s.postJSON("/auth/register", dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "Password123",
		Nick:     "alice",
		Gender:   "female",
		City:     "Berlin",
		DOB:      "1995-04-12",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	var okResp dto.OKResponse
	s.decode(resp, &okResp)
	s.True(okResp.OK)
	s.Equal("/auth/check-email", okResp.Next)

	s.Equal("draft", s.accountStatus("alice@example.com"))
}

func (s *Suite) TestRegister_PairGender() {
	resp := s.postJSON("/auth/register", dto.RegisterRequest{
		Email:     "pair@example.com",
		Password:  "Password123",
		Nick:      "thepair",
		Gender:    "pair",
		City:      "Hamburg",
		MaleDOB:   "1990-01-01",
		FemaleDOB: "1992-02-02",
	})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestRegister_DuplicateEmail() {
	s.register("dup@example.com", "first")

	resp := s.postJSON("/auth/register", dto.RegisterRequest{
		Email:    "dup@example.com",
		Password: "Password123",
		Nick:     "second",
		Gender:   "male",
		City:     "Berlin",
		DOB:      "1990-01-01",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	s.Equal("email_exists", errResp.Error)
}

func (s *Suite) TestRegister_DuplicateNick() {
	s.register("one@example.com", "taken")

	resp := s.postJSON("/auth/register", dto.RegisterRequest{
		Email:    "two@example.com",
		Password: "Password123",
		Nick:     "taken",
		Gender:   "male",
		City:     "Berlin",
		DOB:      "1990-01-01",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	s.Equal("nick_exists", errResp.Error)
}

func (s *Suite) TestRegister_MissingFields() {
	resp := s.postJSON("/auth/register", dto.RegisterRequest{
		Email:    "incomplete@example.com",
		Password: "Password123",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	s.Equal("missing_fields", errResp.Error)
}

func (s *Suite) TestLogin_BeforeConfirmation() {
	s.register("draft@example.com", "draftuser")

	resp := s.postJSON("/auth/login", dto.LoginRequest{
		Email:    "draft@example.com",
		Password: "Password123",
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	s.Equal("email_not_confirmed", errResp.Error)
}

func (s *Suite) TestConfirm_ThenLogin() {
	s.register("confirmed@example.com", "confirmed")
	s.confirmEmail("confirmed@example.com")

	s.Equal("email_confirmed", s.accountStatus("confirmed@example.com"))

	resp := s.postJSON("/auth/login", dto.LoginRequest{
		Email:    "confirmed@example.com",
		Password: "Password123",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotNil(s.cookie(resp, "auth"))

	var loginResp dto.LoginResponse
	s.decode(resp, &loginResp)
	s.True(loginResp.OK)
	s.Equal("email_confirmed", string(loginResp.Status))
}

func (s *Suite) TestConfirm_TokenReuse() {
	s.register("reuse@example.com", "reuser")
	token := s.verificationToken("reuse@example.com", "confirm_email")

	first := s.get("/auth/confirm?token=" + token)
	first.Body.Close()
	s.Equal(http.StatusOK, first.StatusCode)

	second := s.get("/auth/confirm?token=" + token)
	defer second.Body.Close()
	s.Equal(http.StatusBadRequest, second.StatusCode)

	body, err := io.ReadAll(second.Body)
	s.Require().NoError(err)
	s.Equal("token used", string(body))
}

func (s *Suite) TestConfirm_ConcurrentRequestsConsumeOnce() {
	s.register("race@example.com", "racer")
	token := s.verificationToken("race@example.com", "confirm_email")

	const workers = 8
	statuses := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Get(s.BaseURL + "/auth/confirm?token=" + token)
			if err != nil {
				statuses <- 0
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	succeeded := 0
	for code := range statuses {
		if code == http.StatusOK {
			succeeded++
		} else {
			s.Equal(http.StatusBadRequest, code)
		}
	}
	s.Equal(1, succeeded)
	s.Equal("email_confirmed", s.accountStatus("race@example.com"))
}

func (s *Suite) TestConfirm_UnknownToken() {
	resp := s.get("/auth/confirm?token=no-such-token")
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal("invalid token", string(body))
}

func (s *Suite) TestLogin_WrongPassword() {
	s.register("victim@example.com", "victim")
	s.confirmEmail("victim@example.com")

	resp := s.postJSON("/auth/login", dto.LoginRequest{
		Email:    "victim@example.com",
		Password: "WrongPassword",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	s.Equal("invalid_credentials", errResp.Error)
}

func (s *Suite) TestLogin_Banned() {
	s.register("banned@example.com", "banned")
	s.confirmEmail("banned@example.com")

	_, err := s.Postgres.DB.Exec(`UPDATE accounts SET banned = TRUE WHERE email = $1`, "banned@example.com")
	s.Require().NoError(err)

	resp := s.postJSON("/auth/login", dto.LoginRequest{
		Email:    "banned@example.com",
		Password: "Password123",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(resp, &errResp)
	s.Equal("account_banned", errResp.Error)
}

func (s *Suite) TestPasswordReset_Flow() {
	s.register("forgetful@example.com", "forgetful")
	s.confirmEmail("forgetful@example.com")

	resp := s.postJSON("/auth/forgot", dto.EmailRequest{Email: "forgetful@example.com"})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	token := s.verificationToken("forgetful@example.com", "reset_password")

	resp = s.postJSON("/auth/reset", dto.ResetPasswordRequest{Token: token, Password: "NewPassword456"})
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	old := s.postJSON("/auth/login", dto.LoginRequest{Email: "forgetful@example.com", Password: "Password123"})
	old.Body.Close()
	s.Equal(http.StatusUnauthorized, old.StatusCode)

	s.login("forgetful@example.com", "NewPassword456")
}

func (s *Suite) TestForgot_UnknownEmail_StaysSilent() {
	resp := s.postJSON("/auth/forgot", dto.EmailRequest{Email: "ghost@example.com"})
	s.Equal(http.StatusOK, resp.StatusCode)

	var okResp dto.OKResponse
	s.decode(resp, &okResp)
	s.True(okResp.OK)
}

func (s *Suite) TestStatus_RequiresSession() {
	resp := s.get("/me/status")
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestStatus_ReturnsAccount() {
	cookie := s.registerConfirmed("me@example.com", "itsme")

	resp := s.get("/me/status", cookie)
	s.Equal(http.StatusOK, resp.StatusCode)

	var status dto.StatusResponse
	s.decode(resp, &status)
	s.True(status.OK)
	s.Equal("me@example.com", status.Email)
	s.Equal("itsme", status.Nick)
	s.Equal("email_confirmed", string(status.Status))
	s.False(status.Impersonated)
}

func (s *Suite) TestLogout_ClearsCookie() {
	cookie := s.registerConfirmed("leaver@example.com", "leaver")

	resp := s.postJSON("/auth/logout", nil, cookie)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	cleared := s.cookie(resp, "auth")
	s.Require().NotNil(cleared)
	s.Empty(cleared.Value)
}
