package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/notasalud/clinicalnotes/backend/internal/domain/entities"
	"github.com/notasalud/clinicalnotes/backend/internal/domain/providers"
	"github.com/notasalud/clinicalnotes/backend/pkg/config"
	apperrors "github.com/notasalud/clinicalnotes/backend/pkg/errors"
)

const (
	sessionCookieName = "clinicalnotes_session"
	stateCookieName   = "oauth_state"
	sessionKeyPrefix  = "session:"
	userInfoEndpoint  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// googleUserInfo is the profile returned by Google's userinfo endpoint
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleProvider implements IdentityProvider with Google OAuth. Sessions are
// kept in the shared cache so every API instance can resolve them.
type GoogleProvider struct {
	oauth2Config *oauth2.Config
	sessions     providers.CacheProvider
	sessionTTL   int
	httpClient   *http.Client
}

// Ensure GoogleProvider implements IdentityProvider
var _ providers.IdentityProvider = (*GoogleProvider)(nil)

// NewGoogleProvider creates a Google OAuth identity provider
func NewGoogleProvider(cfg *config.AuthConfig, sessions providers.CacheProvider) *GoogleProvider {
	return &GoogleProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		sessions:   sessions,
		sessionTTL: cfg.SessionTTLSecs,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// HandleLogin starts the Google OAuth flow
func (p *GoogleProvider) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}

	// State lives in a short cookie, verified on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, p.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusTemporaryRedirect)
}

// HandleCallback completes the flow and establishes a session
func (p *GoogleProvider) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		log.Warn().Msg("oauth state mismatch")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		log.Warn().Str("error", errMsg).Msg("google returned oauth error")
		http.Redirect(w, r, "/?error="+errMsg, http.StatusTemporaryRedirect)
		return
	}

	token, err := p.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("failed to exchange oauth code")
		http.Redirect(w, r, "/?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	userInfo, err := p.getUserInfo(r.Context(), token.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch google user info")
		http.Redirect(w, r, "/?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}

	sessionID, err := randomToken()
	if err != nil {
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}

	now := time.Now().UTC()
	user := &entities.User{
		ID:        userInfo.ID,
		Email:     userInfo.Email,
		Name:      userInfo.Name,
		Picture:   userInfo.Picture,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(p.sessionTTL) * time.Second),
	}

	payload, err := json.Marshal(user)
	if err != nil {
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}
	if err := p.sessions.Set(r.Context(), sessionKeyPrefix+sessionID, payload, p.sessionTTL); err != nil {
		log.Error().Err(err).Msg("failed to store session")
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}

	log.Info().Str("email", user.Email).Msg("user logged in")

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   p.sessionTTL,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout tears down the session
func (p *GoogleProvider) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := p.sessions.Delete(r.Context(), sessionKeyPrefix+cookie.Value); err != nil {
			log.Warn().Err(err).Msg("failed to delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Resolve returns the session principal for a request
func (p *GoogleProvider) Resolve(ctx context.Context, r *http.Request) (*entities.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("no session")
	}

	payload, err := p.sessions.Get(ctx, sessionKeyPrefix+cookie.Value)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("session not found")
	}

	user := &entities.User{}
	if err := json.Unmarshal(payload, user); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid session")
	}

	if user.Expired(time.Now().UTC()) {
		if err := p.sessions.Delete(ctx, sessionKeyPrefix+cookie.Value); err != nil {
			log.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, apperrors.NewUnauthorizedError("session expired")
	}

	return user, nil
}

func (p *GoogleProvider) getUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoEndpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}

	userInfo := &googleUserInfo{}
	if err := json.Unmarshal(body, userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return userInfo, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
