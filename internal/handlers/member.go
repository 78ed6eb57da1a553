package handlers

import (
	"net/http"

	"mentor-api/internal/middleware"
	"mentor-api/internal/models"
	"mentor-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MemberHandler містить handlers для роботи з учасниками
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler створює новий MemberHandler
func NewMemberHandler(memberService services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// Me повертає профіль поточного учасника
// @Summary Current Member
// @Description Повертає профіль автентифікованого учасника
// @Tags member
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MemberProfile
// @Failure 401 {object} map[string]interface{}
// @Router /api/v1/member/me [get]
func (h *MemberHandler) Me(c *gin.Context) {
	member, ok := middleware.CurrentMember(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthorized",
			"error_description": "Authentication required",
		})
		return
	}

	c.JSON(http.StatusOK, member.Profile())
}

// List повертає список активних учасників
// @Summary List Members
// @Description Повертає список активних учасників (тільки для адміністраторів)
// @Tags member
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MemberListResponse
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/admin/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.memberService.ListMembers()
	if err != nil {
		logrus.WithError(err).Error("Failed to list members")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to list members",
		})
		return
	}

	profiles := make([]models.MemberProfile, 0, len(members))
	for _, member := range members {
		profiles = append(profiles, member.Profile())
	}

	c.JSON(http.StatusOK, models.MemberListResponse{
		Members: profiles,
		Total:   len(profiles),
	})
}

// DeleteMe деактивує поточного учасника
// @Summary Delete Current Member
// @Description Деактивує обліковий запис автентифікованого учасника
// @Tags member
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/member/me [delete]
func (h *MemberHandler) DeleteMe(c *gin.Context) {
	member, ok := middleware.CurrentMember(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":             "unauthorized",
			"error_description": "Authentication required",
		})
		return
	}

	if err := h.memberService.DeactivateMember(member.ID); err != nil {
		logrus.WithError(err).WithField("member_id", member.ID).Error("Failed to deactivate member")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to deactivate member",
		})
		return
	}

	logrus.WithField("member_id", member.ID).Info("Member deactivated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Member deactivated successfully",
	})
}
