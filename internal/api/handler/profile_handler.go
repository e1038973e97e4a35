package handler

import (
	"trackforge/internal/api/dto"
	"trackforge/internal/model"
	"trackforge/internal/pkg/response"
	"trackforge/internal/pkg/util"
	"trackforge/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileSvc service.ProfileService
}

func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req dto.CreateProfileDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	platform := model.Platform(req.Platform)
	if platform == "" {
		platform = model.PlatformInstagram
	}
	if !platform.Valid() {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := h.profileSvc.TrackNow(c.Request.Context(), platform, req.Username, req.TrackingID, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result.Profile)
}

func (h *ProfileHandler) RefreshProfile(c *gin.Context) {
	username := c.Param("username")
	platform := model.Platform(c.DefaultQuery("platform", string(model.PlatformInstagram)))
	if !platform.Valid() {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := h.profileSvc.RefreshByUsername(c.Request.Context(), platform, username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result.Profile)
}

func (h *ProfileHandler) GetSession(c *gin.Context) {
	trackingID := c.Param("tracking_id")
	view, err := h.profileSvc.GetSession(c.Request.Context(), trackingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

func (h *ProfileHandler) ListReels(c *gin.Context) {
	username := c.Param("username")
	platform := model.Platform(c.DefaultQuery("platform", string(model.PlatformInstagram)))
	if !platform.Valid() {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reels, err := h.profileSvc.ListReels(c.Request.Context(), platform, username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reels)
}

func (h *ProfileHandler) GetReelHistory(c *gin.Context) {
	trackingID := c.Param("tracking_id")
	shortcode := c.Param("shortcode")

	history, err := h.profileSvc.GetReelHistory(c.Request.Context(), trackingID, shortcode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, history)
}
