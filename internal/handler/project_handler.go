package handler

import (
	"net/http"

	"github.com/ghostfund/gfs/internal/ai"
	"github.com/ghostfund/gfs/internal/logger"
	"github.com/ghostfund/gfs/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectLogic *logic.ProjectLogic
	aiClient     *ai.Client
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(db *gorm.DB, chainSvc logic.TransferService, aiClient *ai.Client) *ProjectHandler {
	return &ProjectHandler{
		projectLogic: logic.NewProjectLogic(db, chainSvc),
		aiClient:     aiClient,
	}
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "缺少必填的项目信息")
		return
	}

	result, err := h.projectLogic.CreateProject(c.Request.Context(), logic.CreateProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		FundingGoal:  req.FundingGoal,
		OwnerAddress: req.OwnerAddress,
		Duration:     req.Duration,
		Category:     req.Category,
		Tags:         req.Tags,
		IsAnonymous:  req.IsAnonymous,
	})
	if err != nil {
		ErrorResponseFromErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, ProjectDetailResponse{
		Success: true,
		Message: "项目创建成功",
		Project: ToProjectResponse(result.Project),
	})
}

// GetProjects 获取项目列表
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	filters := logic.ListFilters{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	projects, err := h.projectLogic.GetProjects(c.Request.Context(), filters)
	if err != nil {
		ErrorResponseFromErr(c, err)
		return
	}

	c.JSON(http.StatusOK, ProjectListResponse{
		Success:  true,
		Projects: ToProjectResponseList(projects),
	})
}

// GetProject 获取单个项目详情
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectLogic.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		ErrorResponseFromErr(c, err)
		return
	}

	c.JSON(http.StatusOK, ProjectDetailResponse{
		Success: true,
		Project: ToProjectResponse(project),
	})
}

// FundProject 为项目出资
func (h *ProjectHandler) FundProject(c *gin.Context) {
	var req FundProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "缺少必填的出资信息")
		return
	}

	result, err := h.projectLogic.FundProject(c.Request.Context(), req.ProjectID, req.Amount, req.FunderAddress)
	if err != nil {
		ErrorResponseFromErr(c, err)
		return
	}

	c.JSON(http.StatusOK, FundProjectResponse{
		Success:     true,
		Message:     "出资成功",
		Transaction: result.Receipt,
		Project:     ToProjectResponse(result.Project),
	})
}

// AnalyzeProject 分析项目描述的潜在风险
func (h *ProjectHandler) AnalyzeProject(c *gin.Context) {
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "项目描述不能为空")
		return
	}

	analysis, err := h.aiClient.AnalyzeRisk(c.Request.Context(), req.Description)
	if err != nil {
		logger.Error("Failed to analyze project description: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "风险分析失败")
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		Success:        true,
		Analysis:       analysis.Analysis,
		RiskScore:      analysis.RiskScore,
		Recommendation: analysis.Recommendation,
	})
}

// GetProjectSuggestions 获取项目描述的改进建议
func (h *ProjectHandler) GetProjectSuggestions(c *gin.Context) {
	var req DescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "项目描述不能为空")
		return
	}

	suggestions, err := h.aiClient.Suggest(c.Request.Context(), req.Description)
	if err != nil {
		logger.Error("Failed to generate project suggestions: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "生成建议失败")
		return
	}

	c.JSON(http.StatusOK, SuggestionsResponse{
		Success:     true,
		Suggestions: suggestions,
	})
}

// GetProjectStats 获取项目统计信息
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	stats, err := h.projectLogic.GetProjectStats(c.Request.Context())
	if err != nil {
		ErrorResponseFromErr(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Success: true,
		Stats:   stats,
	})
}
