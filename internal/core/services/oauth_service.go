package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/config"
	"ember-portal/internal/core/authz"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

// OAuth errors
var (
	ErrUnknownProvider   = errors.New("unknown oauth provider")
	ErrProviderDisabled  = errors.New("oauth provider not configured")
	ErrInvalidState      = errors.New("invalid or expired oauth state")
	ErrIdentityTaken     = errors.New("external account already linked to another user")
	ErrIdentityNotLinked = errors.New("external account not linked")
	ErrNoProviderEmail   = errors.New("provider returned no email address")
	ErrLastLoginMethod   = errors.New("cannot unlink the only login method")
)

const (
	oauthStatePrefix = "oauth_state:"
	oauthStateTTL    = 10 * time.Minute
)

// Discord OAuth2 endpoints (not shipped with x/oauth2)
var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// externalProfile is the provider-agnostic view of a provider account
type externalProfile struct {
	Subject  string
	Email    string
	Username string
}

// OAuthService handles Google / Discord sign-in and account linking
type OAuthService struct {
	identityRepo repositories.OAuthIdentityRepository
	userRepo     repositories.UserRepository
	authService  *AuthService
	rdb          *redis.Client
	cfg          *config.Config
	httpClient   *http.Client
}

// NewOAuthService creates a new oauth service
func NewOAuthService(
	identityRepo repositories.OAuthIdentityRepository,
	userRepo repositories.UserRepository,
	authService *AuthService,
	rdb *redis.Client,
	cfg *config.Config,
) *OAuthService {
	return &OAuthService{
		identityRepo: identityRepo,
		userRepo:     userRepo,
		authService:  authService,
		rdb:          rdb,
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// providerConfig builds the oauth2 config for one provider
func (s *OAuthService) providerConfig(provider string) (*oauth2.Config, error) {
	switch provider {
	case models.ProviderGoogle:
		if s.cfg.OAuth.Google.ClientID == "" {
			return nil, ErrProviderDisabled
		}
		return &oauth2.Config{
			ClientID:     s.cfg.OAuth.Google.ClientID,
			ClientSecret: s.cfg.OAuth.Google.ClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/%s/callback", s.cfg.BaseURL, provider),
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}, nil
	case models.ProviderDiscord:
		if s.cfg.OAuth.Discord.ClientID == "" {
			return nil, ErrProviderDisabled
		}
		return &oauth2.Config{
			ClientID:     s.cfg.OAuth.Discord.ClientID,
			ClientSecret: s.cfg.OAuth.Discord.ClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/%s/callback", s.cfg.BaseURL, provider),
			Scopes:       []string{"identify", "email"},
			Endpoint:     discordEndpoint,
		}, nil
	default:
		return nil, ErrUnknownProvider
	}
}

// BeginLogin creates a one-shot state token and returns the provider's
// consent URL. The state lives in Redis so callbacks can land on any
// instance.
func (s *OAuthService) BeginLogin(ctx context.Context, provider string) (string, error) {
	conf, err := s.providerConfig(provider)
	if err != nil {
		return "", err
	}

	state := uuid.New().String()
	if err := s.rdb.Set(ctx, oauthStatePrefix+state, provider, oauthStateTTL).Err(); err != nil {
		return "", err
	}

	return conf.AuthCodeURL(state), nil
}

// consumeState validates and burns a state token
func (s *OAuthService) consumeState(ctx context.Context, provider, state string) error {
	stored, err := s.rdb.GetDel(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidState
		}
		return err
	}
	if stored != provider {
		return ErrInvalidState
	}
	return nil
}

// CompleteLogin exchanges the callback code, then signs the matching user
// in. An unseen provider account auto-registers a new member; a known email
// links to the existing user instead.
func (s *OAuthService) CompleteLogin(ctx context.Context, provider, state, code string) (*AuthResponse, error) {
	conf, err := s.providerConfig(provider)
	if err != nil {
		return nil, err
	}

	if err := s.consumeState(ctx, provider, state); err != nil {
		return nil, err
	}

	profile, err := s.fetchProfile(ctx, conf, provider, code)
	if err != nil {
		return nil, err
	}

	// Known identity: straight sign-in
	identity, err := s.identityRepo.GetByProviderSubject(ctx, provider, profile.Subject)
	if err == nil {
		user, err := s.userRepo.GetByID(ctx, identity.UserID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		log.Printf("✅ OAuth login: %s via %s", user.Username, provider)
		return s.authService.IssueTokens(ctx, user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if profile.Email == "" {
		return nil, ErrNoProviderEmail
	}

	// Same email as an existing account: link and sign in
	user, err := s.userRepo.GetByEmail(ctx, profile.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.registerFromProfile(ctx, provider, profile)
		if err != nil {
			return nil, err
		}
	}

	link := &models.OAuthIdentity{
		UserID:         user.ID,
		Provider:       provider,
		ProviderUserID: profile.Subject,
		Email:          profile.Email,
	}
	if err := s.identityRepo.Create(ctx, link); err != nil {
		return nil, err
	}

	log.Printf("✅ OAuth login: %s via %s (new link)", user.Username, provider)
	return s.authService.IssueTokens(ctx, user)
}

// BeginLink starts the consent flow for linking a provider to an existing,
// signed-in account. Same mechanics as BeginLogin; the handler carries the
// user through its own session.
func (s *OAuthService) BeginLink(ctx context.Context, provider string) (string, error) {
	return s.BeginLogin(ctx, provider)
}

// CompleteLink attaches the provider account to the given user
func (s *OAuthService) CompleteLink(ctx context.Context, userID uint, provider, state, code string) error {
	conf, err := s.providerConfig(provider)
	if err != nil {
		return err
	}

	if err := s.consumeState(ctx, provider, state); err != nil {
		return err
	}

	profile, err := s.fetchProfile(ctx, conf, provider, code)
	if err != nil {
		return err
	}

	existing, err := s.identityRepo.GetByProviderSubject(ctx, provider, profile.Subject)
	if err == nil {
		if existing.UserID == userID {
			return nil // already linked, nothing to do
		}
		return ErrIdentityTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	link := &models.OAuthIdentity{
		UserID:         userID,
		Provider:       provider,
		ProviderUserID: profile.Subject,
		Email:          profile.Email,
	}
	if err := s.identityRepo.Create(ctx, link); err != nil {
		return err
	}

	log.Printf("✅ Linked %s account for user ID: %d", provider, userID)
	return nil
}

// Unlink removes a provider link. A user with no password must keep at
// least one linked provider or they would be locked out.
func (s *OAuthService) Unlink(ctx context.Context, userID uint, provider string) error {
	if provider != models.ProviderGoogle && provider != models.ProviderDiscord {
		return ErrUnknownProvider
	}

	identities, err := s.identityRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	for _, id := range identities {
		if id.Provider == provider {
			found = true
			break
		}
	}
	if !found {
		return ErrIdentityNotLinked
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Password == "" && len(identities) <= 1 {
		return ErrLastLoginMethod
	}

	if err := s.identityRepo.Delete(ctx, userID, provider); err != nil {
		return err
	}

	log.Printf("✅ Unlinked %s account for user ID: %d", provider, userID)
	return nil
}

// ListLinked returns the providers linked to a user
func (s *OAuthService) ListLinked(ctx context.Context, userID uint) ([]*models.OAuthIdentity, error) {
	return s.identityRepo.ListByUser(ctx, userID)
}

// fetchProfile exchanges the code and pulls the provider's user info
func (s *OAuthService) fetchProfile(ctx context.Context, conf *oauth2.Config, provider, code string) (*externalProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth code exchange failed: %w", err)
	}

	client := conf.Client(ctx, token)

	switch provider {
	case models.ProviderGoogle:
		return fetchGoogleProfile(client)
	case models.ProviderDiscord:
		return fetchDiscordProfile(client)
	default:
		return nil, ErrUnknownProvider
	}
}

func fetchGoogleProfile(client *http.Client) (*externalProfile, error) {
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("google userinfo returned %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	return &externalProfile{Subject: info.ID, Email: info.Email, Username: info.Name}, nil
}

func fetchDiscordProfile(client *http.Client) (*externalProfile, error) {
	resp, err := client.Get("https://discord.com/api/users/@me")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("discord userinfo returned %d: %s", resp.StatusCode, body)
	}

	var info struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}

	return &externalProfile{Subject: info.ID, Email: info.Email, Username: info.Username}, nil
}

// registerFromProfile creates a member account from a provider profile.
// The username is derived from the profile and bumped until unique.
func (s *OAuthService) registerFromProfile(ctx context.Context, provider string, profile *externalProfile) (*models.User, error) {
	base := sanitizeUsername(profile.Username)
	if base == "" {
		base = provider + "_user"
	}

	username := base
	for i := 1; ; i++ {
		exists, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		username = fmt.Sprintf("%s%d", base, i)
	}

	user := &models.User{
		Username:        username,
		Email:           profile.Email,
		Password:        "", // OAuth-only account
		RoleName:        authz.RoleMember,
		WhitelistStatus: models.WhitelistNone,
		IsActive:        true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered via %s: %s", provider, username)
	return user, nil
}

// sanitizeUsername keeps letters, digits and underscores, lowercased
func sanitizeUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '.':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 30 {
		out = out[:30]
	}
	return out
}
