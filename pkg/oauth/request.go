package oauth

import (
	"mime"
	"net/http"
	"strings"
)

const accessTokenParam = "access_token"

// BearerToken extracts the access token of a resource request per RFC 6750:
// the Authorization header first, then the access_token query parameter,
// then the form body of a urlencoded POST. A missing token is
// ErrInvalidAccessToken.
func BearerToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", ErrInvalidAccessToken
		}
		if token = strings.TrimSpace(token); token == "" {
			return "", ErrInvalidAccessToken
		}
		return token, nil
	}

	if token := r.URL.Query().Get(accessTokenParam); token != "" {
		return token, nil
	}

	if r.Method == http.MethodPost && isFormBody(r) {
		if err := r.ParseForm(); err == nil {
			if token := r.PostForm.Get(accessTokenParam); token != "" {
				return token, nil
			}
		}
	}

	return "", ErrInvalidAccessToken
}

func isFormBody(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}
