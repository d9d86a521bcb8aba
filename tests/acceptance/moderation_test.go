package acceptance

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/twinside/backend/internal/dto"
)

func (s *Suite) TestProfileSubmission_Approve() {
	cookie := s.registerConfirmed("hopeful@example.com", "hopeful")

	resp := s.submitProfile(cookie)
	s.Equal(http.StatusOK, resp.StatusCode)

	var okResp dto.OKResponse
	s.decode(resp, &okResp)
	s.True(okResp.OK)
	s.Equal("profile_pending", okResp.Status)
	s.Equal("/pending", okResp.Next)
	s.Equal("profile_pending", s.accountStatus("hopeful@example.com"))

	admin := s.adminLogin()

	pending := s.get("/api/admin/pending", admin)
	s.Equal(http.StatusOK, pending.StatusCode)

	var list dto.AccountListResponse
	s.decode(pending, &list)
	s.Require().Len(list.Accounts, 1)
	s.Equal("hopeful@example.com", list.Accounts[0].Email)
	s.Require().NotNil(list.Accounts[0].AvatarPath)
	// clients see the public URL path, never the server directory
	s.True(strings.HasPrefix(*list.Accounts[0].AvatarPath, "/uploads/avatars/"))
	s.NotContains(*list.Accounts[0].AvatarPath, s.uploadsDir)

	approve := s.postJSON("/api/admin/approve/"+list.Accounts[0].ID, nil, admin)
	approve.Body.Close()
	s.Equal(http.StatusOK, approve.StatusCode)
	s.Equal("approved", s.accountStatus("hopeful@example.com"))

	status := s.get("/me/status", cookie)
	var me dto.StatusResponse
	s.decode(status, &me)
	s.Equal("approved", string(me.Status))
	s.Nil(me.RejectReason)
}

func (s *Suite) TestProfileSubmission_RejectAndResubmit() {
	cookie := s.registerConfirmed("rejected@example.com", "rejected")

	resp := s.submitProfile(cookie)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	admin := s.adminLogin()
	id := s.accountID("rejected@example.com")

	reject := s.postJSON("/api/admin/reject/"+id, dto.RejectRequest{Reason: "Blurry photos"}, admin)
	reject.Body.Close()
	s.Equal(http.StatusOK, reject.StatusCode)
	s.Equal("rejected", s.accountStatus("rejected@example.com"))

	status := s.get("/me/status", cookie)
	var me dto.StatusResponse
	s.decode(status, &me)
	s.Require().NotNil(me.RejectReason)
	s.Equal("Blurry photos", *me.RejectReason)

	// a rejected account may fix its photos and try again
	resubmit := s.submitProfile(cookie)
	resubmit.Body.Close()
	s.Equal(http.StatusOK, resubmit.StatusCode)
	s.Equal("profile_pending", s.accountStatus("rejected@example.com"))
}

func (s *Suite) TestProfileSubmission_RequirePayment() {
	cookie := s.registerConfirmed("payer@example.com", "payer")

	resp := s.submitProfile(cookie)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	admin := s.adminLogin()
	id := s.accountID("payer@example.com")

	require := s.postJSON("/api/admin/require-payment/"+id, nil, admin)
	require.Body.Close()
	s.Equal(http.StatusOK, require.StatusCode)
	s.Equal("requires_payment", s.accountStatus("payer@example.com"))
}

func (s *Suite) TestProfileSubmission_DoubleSubmit() {
	cookie := s.registerConfirmed("eager@example.com", "eager")

	first := s.submitProfile(cookie)
	first.Body.Close()
	s.Equal(http.StatusOK, first.StatusCode)

	second := s.submitProfile(cookie)
	s.Equal(http.StatusForbidden, second.StatusCode)

	var errResp dto.ErrorResponse
	s.decode(second, &errResp)
	s.Equal("email_not_confirmed_or_already_sent", errResp.Error)
}

func (s *Suite) TestAdmin_LoginRequired() {
	resp := s.get("/api/admin/pending")
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestAdmin_WrongCredentials() {
	resp := s.postJSON("/api/admin/login", dto.LoginRequest{Email: adminEmail, Password: "nope"})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestAdmin_UserCookieRejected() {
	cookie := s.registerConfirmed("sneaky@example.com", "sneaky")

	req, err := http.NewRequest(http.MethodGet, s.BaseURL+"/api/admin/pending", nil)
	s.Require().NoError(err)
	req.AddCookie(&http.Cookie{Name: "admin_auth", Value: cookie.Value})

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestImpersonation_Flow() {
	s.registerConfirmed("target@example.com", "target")

	admin := s.adminLogin()
	id := s.accountID("target@example.com")

	mint := s.postJSON("/api/admin/impersonate/"+id, nil, admin)
	s.Equal(http.StatusOK, mint.StatusCode)

	var grant dto.ImpersonationResponse
	s.decode(mint, &grant)
	s.True(grant.OK)
	s.NotEmpty(grant.Token)
	s.Contains(grant.URL, "/auth/impersonate?token=")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(s.BaseURL + "/auth/impersonate?token=" + url.QueryEscape(grant.Token))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusFound, resp.StatusCode)
	s.Equal("/", resp.Header.Get("Location"))

	session := s.cookie(resp, "auth")
	s.Require().NotNil(session)

	status := s.get("/me/status", session)
	var me dto.StatusResponse
	s.decode(status, &me)
	s.Equal("target@example.com", me.Email)
	s.True(me.Impersonated)
}

func (s *Suite) TestImpersonation_GrantIsNotASession() {
	s.registerConfirmed("grant@example.com", "grantuser")

	admin := s.adminLogin()
	id := s.accountID("grant@example.com")

	mint := s.postJSON("/api/admin/impersonate/"+id, nil, admin)
	var grant dto.ImpersonationResponse
	s.decode(mint, &grant)

	// the short-lived grant must be exchanged, not used as an auth cookie
	resp := s.get("/me/status", &http.Cookie{Name: "auth", Value: grant.Token})
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestAdmin_UserManagement() {
	s.registerConfirmed("managed@example.com", "managed")

	admin := s.adminLogin()
	id := s.accountID("managed@example.com")

	banned := true
	patch := s.patchJSON("/api/admin/user/"+id, dto.AccountFlagsRequest{Banned: &banned}, admin)
	patch.Body.Close()
	s.Equal(http.StatusOK, patch.StatusCode)

	users := s.get("/api/admin/users?search=managed", admin)
	s.Equal(http.StatusOK, users.StatusCode)

	var list dto.AccountListResponse
	s.decode(users, &list)
	s.Require().Len(list.Accounts, 1)
	s.True(list.Accounts[0].Banned)
}

func (s *Suite) TestAdmin_FakeProfiles() {
	admin := s.adminLogin()

	form := url.Values{}
	form.Set("nick", "decoy")
	form.Set("gender", "female")
	form.Set("city", "Munich")
	form.Set("about", "Loves hiking.")

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/api/admin/users/fake", strings.NewReader(form.Encode()))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(admin)

	create, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, create.StatusCode)

	var created struct {
		OK   bool            `json:"ok"`
		User dto.AccountView `json:"user"`
	}
	s.decode(create, &created)
	s.True(created.OK)
	s.True(created.User.IsFake)
	s.Equal("approved", string(created.User.Status))

	del := s.doJSON(http.MethodDelete, "/api/admin/user/"+created.User.ID, nil, admin)
	del.Body.Close()
	s.Equal(http.StatusOK, del.StatusCode)

	var count int
	err = s.Postgres.DB.QueryRow(`SELECT COUNT(*) FROM accounts WHERE id = $1`, created.User.ID).Scan(&count)
	s.Require().NoError(err)
	s.Zero(count)
}
