package services

import (
	"errors"
	"fmt"

	"mentor-api/internal/models"

	"github.com/sirupsen/logrus"
)

// authService реалізація AuthService
type authService struct {
	memberService MemberService
	tokenService  TokenService
}

// NewAuthService створює новий AuthService
func NewAuthService(memberService MemberService, tokenService TokenService) AuthService {
	return &authService{
		memberService: memberService,
		tokenService:  tokenService,
	}
}

// Signup реєструє нового учасника
func (s *authService) Signup(req *models.SignupRequest) (*models.SignupResponse, error) {
	logrus.WithField("email", req.Email).Info("AuthService: Signup called")

	response, err := s.memberService.Signup(*req)
	if err != nil {
		logrus.WithError(err).Error("Failed to sign up member")
		return nil, err
	}

	return response, nil
}

// Login виконує локальний вхід за email та паролем.
// Успішний вхід випускає нову пару токенів і зберігає refresh токен
func (s *authService) Login(req *models.LoginRequest) (*models.TokenResponse, error) {
	member, err := s.memberService.ValidateLogin(req.Email, req.Password)
	if err != nil {
		logrus.WithField("email", req.Email).Warn("Local login failed")
		return nil, err
	}

	return s.issueTokens(member)
}

// ResolveOAuthMember знаходить учасника за зовнішньою ідентичністю
// або створює нового з роллю GUEST
func (s *authService) ResolveOAuthMember(info *ProviderUserInfo) (*Member, error) {
	member, err := s.memberService.FindBySocial(info.SocialType, info.ID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}

	return s.memberService.CreateFromOAuth(info)
}

// FinalizeOAuthLogin завершує федеративний вхід: випускає токени,
// підвищує роль GUEST при першому вході та зберігає refresh токен.
// Refresh токен зберігається в обох гілках (узгоджена політика)
func (s *authService) FinalizeOAuthLogin(member *Member) (*models.TokenResponse, error) {
	role := models.Role(member.Role)

	accessToken, err := s.tokenService.CreateAccessToken(member.Email, role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenService.CreateRefreshToken()
	if err != nil {
		return nil, err
	}

	if role == models.RoleGuest {
		found, err := s.memberService.FindByEmail(member.Email)
		if err != nil {
			// GUEST без існуючого акаунта - порушення інваріанту
			return nil, fmt.Errorf("no member matches guest email: %w", err)
		}
		if err := s.memberService.Authorize(found.ID); err != nil {
			return nil, err
		}
		member = found
	}

	if err := s.memberService.UpdateRefreshToken(member.ID, refreshToken); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"member_id": member.ID,
		"role":      member.Role,
	}).Info("OAuth login finalized")

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenService.AccessTTL().Seconds()),
	}, nil
}

// issueTokens випускає пару токенів і зберігає refresh токен учасника
func (s *authService) issueTokens(member *Member) (*models.TokenResponse, error) {
	accessToken, err := s.tokenService.CreateAccessToken(member.Email, models.Role(member.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenService.CreateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.memberService.UpdateRefreshToken(member.ID, refreshToken); err != nil {
		return nil, err
	}

	logrus.WithField("member_id", member.ID).Info("Member logged in successfully")

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokenService.AccessTTL().Seconds()),
	}, nil
}
