package http

import (
	"net/http"

	"github.com/aussiebroadwan/idkit/internal/stub/domain"
	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
)

// linker resolves the base URL hrefs are built from.
type linker interface {
	BaseURL(r *http.Request) string
}

type hrefs struct {
	base string
}

func hrefsFor(l linker, r *http.Request) hrefs {
	return hrefs{base: l.BaseURL(r)}
}

func (h hrefs) application(id string) string { return h.base + "/v1/applications/" + id }
func (h hrefs) directory(id string) string   { return h.base + "/v1/directories/" + id }
func (h hrefs) account(id string) string     { return h.base + "/v1/accounts/" + id }
func (h hrefs) apiKey(id string) string      { return h.base + "/v1/apiKeys/" + id }

func (h hrefs) resetToken(appID, token string) string {
	return h.application(appID) + "/passwordResetTokens/" + token
}

func (h hrefs) renderApplication(app domain.Application) idsdk.Application {
	return idsdk.Application{
		Href:                h.application(app.ID),
		Name:                app.Name,
		Description:         app.Description,
		Status:              idsdk.ApplicationStatus(app.Status),
		DefaultAccountStore: &idsdk.Link{Href: h.directory(app.DirectoryID)},
	}
}

func (h hrefs) renderDirectory(dir domain.Directory) idsdk.Directory {
	return idsdk.Directory{
		Href:        h.directory(dir.ID),
		Name:        dir.Name,
		Description: dir.Description,
		Status:      dir.Status,
	}
}

func (h hrefs) renderAccount(acct domain.Account) idsdk.Account {
	return idsdk.Account{
		Href:      h.account(acct.ID),
		Username:  acct.Username,
		Email:     acct.Email,
		GivenName: acct.GivenName,
		Surname:   acct.Surname,
		Status:    idsdk.AccountStatus(acct.Status),
		Directory: &idsdk.Link{Href: h.directory(acct.DirectoryID)},
		APIKeys:   &idsdk.Link{Href: h.account(acct.ID) + "/apiKeys"},
	}
}

// renderAPIKey includes the secret. The owner is a bare link unless owner
// is given.
func (h hrefs) renderAPIKey(key service.APIKey, owner *domain.Account) idsdk.APIKey {
	out := idsdk.APIKey{
		Href:    h.apiKey(key.ID),
		ID:      key.ID,
		Secret:  key.Secret,
		Status:  idsdk.APIKeyStatus(key.Status),
		Account: &idsdk.Account{Href: h.account(key.AccountID)},
	}
	if owner != nil {
		acct := h.renderAccount(*owner)
		out.Account = &acct
	}
	return out
}

// renderResetToken links the account only. The href carries the plaintext
// token when it is known.
func (h hrefs) renderResetToken(rec domain.PasswordResetToken, token string) idsdk.PasswordResetToken {
	return idsdk.PasswordResetToken{
		Href:    h.resetToken(rec.ApplicationID, token),
		Email:   rec.Email,
		Account: &idsdk.Account{Href: h.account(rec.AccountID)},
	}
}
