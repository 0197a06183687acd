package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/scoring"
	"ecofix/backend/go/internal/tracker_service/service"
	"ecofix/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handler 封装了所有 API endpoint 的处理函数。
type Handler struct {
	service *service.Service
	log     *logger.Logger
	health  func(ctx context.Context) error
}

// NewHandler 创建一个新的 Handler 实例。health 用于 /healthz，可以为 nil。
func NewHandler(s *service.Service, log *logger.Logger, health func(ctx context.Context) error) *Handler {
	if log == nil {
		log = logger.New("tracker_service", "", "")
	}
	return &Handler{service: s, log: log, health: health}
}

// Healthz 报告服务及其数据库是否可用。
func (h *Handler) Healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Accounts ---

// RegisterRequest 定义了注册请求的 JSON 结构。
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 处理注册请求。
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.RegisterUser(req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful", "user_id": user.ID})
}

// LoginRequest 定义了登录请求的 JSON 结构。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理登录请求。
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout 注销当前令牌。
func (h *Handler) Logout(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me 返回当前用户的资料与最近一次保存的评分。
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.service.Profile(currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// --- Activities ---

// ActivityRequest 定义了记录活动的 JSON 结构，date 为空时使用当天。
type ActivityRequest struct {
	Date           string   `json:"date"`
	Transportation string   `json:"transportation" binding:"required"`
	Diet           string   `json:"diet" binding:"required"`
	EnergyUsage    *float64 `json:"energy_usage" binding:"required"`
}

// CreateActivity 记录一条活动并返回碳足迹估算。
func (h *Handler) CreateActivity(c *gin.Context) {
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.ActivityInput{
		Transportation: req.Transportation,
		Diet:           req.Diet,
		EnergyUsage:    *req.EnergyUsage,
	}
	if req.Date != "" {
		date, err := time.Parse(models.DateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD", "field": "date"})
			return
		}
		in.Date = date
	}

	result, err := h.service.LogActivity(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListActivities 返回当前用户的全部活动。
func (h *Handler) ListActivities(c *gin.Context) {
	activities, err := h.service.ListActivities(currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// --- Sustainability ---

func reportBody(report *scoring.Report) gin.H {
	return gin.H{
		"score":       report.Parsed.Score,
		"breakdown":   report.Parsed.Breakdown,
		"suggestions": report.Parsed.Suggestions,
		"rawText":     report.Raw,
	}
}

// Sustainability 返回当前用户的可持续性评分。
func (h *Handler) Sustainability(c *gin.Context) {
	report, err := h.service.Sustainability(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportBody(report))
}

// Chart 返回图表数据点数组。
func (h *Handler) Chart(c *gin.Context) {
	points, err := h.service.Chart(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// SimulateRequest 定义了绿色行动模拟的请求结构。
type SimulateRequest struct {
	Action string `json:"action" binding:"required"`
}

// Simulate 估算采取绿色行动后的评分。
func (h *Handler) Simulate(c *gin.Context) {
	var req SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.service.Simulate(c.Request.Context(), currentUserID(c), scoring.GreenAction(req.Action))
	if err != nil {
		h.respondError(c, err)
		return
	}
	body := reportBody(report)
	body["action"] = req.Action
	c.JSON(http.StatusOK, body)
}

// --- Observations ---

// SubmitObservation 处理 multipart 表单提交的环境观测。
func (h *Handler) SubmitObservation(c *gin.Context) {
	in := service.ObservationInput{
		Type:        models.ObservationType(c.PostForm("observation_type")),
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
	}

	fh, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "photo"})
		return
	default:
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "photo"})
			return
		}
		defer f.Close()
		in.Photo = &service.PhotoUpload{Filename: fh.Filename, Content: f}
	}

	obs, err := h.service.SubmitObservation(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, obs)
}

// ObservationMap 返回所有观测的地图标记。
func (h *Handler) ObservationMap(c *gin.Context) {
	markers, err := h.service.ObservationMap()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, markers)
}

// ListObservations 分页列出观测，支持 type 与 page 查询参数。
func (h *Handler) ListObservations(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	result, err := h.service.ListObservations(c.Query("type"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
