package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"wallet-service/config"
	"wallet-service/internal/core/ports"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Provider implements ports.IdentityProvider against Google OAuth.
type Provider struct {
	oauth       *oauth2.Config
	userinfoURL string
	log         zerolog.Logger
}

// NewProvider creates a Google identity provider.
func NewProvider(cfg config.GoogleConfig, log zerolog.Logger) *Provider {
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: "https://oauth2.googleapis.com/token",
			},
		},
		userinfoURL: userinfoURL,
		log:         log,
	}
}

// AuthURL builds the consent page URL carrying the CSRF state.
func (p *Provider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

type userinfoResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchange trades the authorization code for the asserted identity.
func (p *Provider) Exchange(ctx context.Context, code string) (*ports.Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	resp, err := p.oauth.Client(ctx, token).Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("userinfo: status %d: %s", resp.StatusCode, raw)
	}

	var info userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if info.ID == "" {
		return nil, fmt.Errorf("userinfo response missing subject id")
	}

	p.log.Debug().Str("email", info.Email).Msg("identity exchanged")

	return &ports.Identity{
		SubjectID: info.ID,
		Email:     info.Email,
		Name:      info.Name,
	}, nil
}
