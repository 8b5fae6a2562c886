package transport

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Victorious-hub/Open-Graph/internal/models"
)

func (s *HTTPServer) UserCreate(c *fiber.Ctx) error {
	req := models.UserReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.users.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(models.UserResp{
		ID:    user.ID,
		Email: user.Email,
	})
}

func (s *HTTPServer) UserAuthenticate(c *fiber.Ctx) error {
	req := models.LoginReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := s.users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(models.TokenPairResp{
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}

func (s *HTTPServer) UserTokenRefresh(c *fiber.Ctx) error {
	req := models.RefreshReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	access, err := s.users.Refresh(req.Refresh)
	if err != nil {
		return err
	}

	return c.JSON(models.AccessResp{Access: access})
}

func (s *HTTPServer) UserPasswordChange(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.ChangePasswordReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.users.ChangePassword(c.UserContext(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"detail": "Password updated successfully"})
}

func (s *HTTPServer) UserPasswordReset(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := models.PasswordResetReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	reset, err := s.users.RequestPasswordReset(c.UserContext(), user.ID, req.Email)
	if err != nil {
		return err
	}

	return c.JSON(models.PasswordResetResp{
		Detail:   "Password reset link has been sent to your email",
		ResetURL: reset.ResetURL,
	})
}

func (s *HTTPServer) UserPasswordNew(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	token, err := GetParam(c, "token")
	if err != nil {
		return err
	}

	req := models.NewPasswordReq{}
	if err := s.BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.users.SetNewPassword(c.UserContext(), user.ID, token, req.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"detail": "Password has been changed"})
}
