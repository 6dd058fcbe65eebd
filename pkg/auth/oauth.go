package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/raywall/fast-fetch-toolkit/pkg/config"
)

// tokenResponse mapeia a resposta padrão da RFC 6749 (OAuth2)
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// ClientCredentialsSource obtém um token no fluxo OAuth2 Client Credentials.
// Não há cache: cada Fetch faz uma nova requisição ao token endpoint.
type ClientCredentialsSource struct {
	cfg    config.OAuthConf
	client *http.Client
}

func NewClientCredentialsSource(cfg config.OAuthConf, client *http.Client) *ClientCredentialsSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ClientCredentialsSource{cfg: cfg, client: client}
}

func (s *ClientCredentialsSource) Fetch(ctx context.Context) (string, error) {
	// Form application/x-www-form-urlencoded
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", s.cfg.ClientID)
	data.Set("client_secret", s.cfg.ClientSecret)
	if s.cfg.Scope != "" {
		data.Set("scope", s.cfg.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("erro ao criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: erro de conexão oauth: %w", ErrCredentialMissing, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: oauth provider retornou erro: %d", ErrCredentialMissing, resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: erro decode json token: %w", ErrCredentialMissing, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("access_token veio vazio: %w", ErrCredentialMissing)
	}

	return tokenResp.AccessToken, nil
}
