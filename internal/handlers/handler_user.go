package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/SscSPs/tax_filing_app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// userHandler handles HTTP requests related to staff users and their permissions.
type userHandler struct {
	userService portssvc.UserSvcFacade
}

// newUserHandler creates a new userHandler.
func newUserHandler(us portssvc.UserSvcFacade) *userHandler {
	return &userHandler{
		userService: us,
	}
}

// registerUserRoutes registers all user-related routes.
func registerUserRoutes(rg *gin.RouterGroup, userService portssvc.UserSvcFacade) {
	h := newUserHandler(userService)
	requireUsers := middleware.RequireModule(userService, domain.ModuleUsers)

	users := rg.Group("/users")
	{
		users.GET("/permissions/:userId", middleware.RequireModuleOrSelf(userService, domain.ModuleUsers, "userId"), h.getPermissions)
		users.PUT("/permissions/:userId", requireUsers, h.updatePermissions)
		users.POST("/create", requireUsers, h.createUser)
		users.GET("/list", requireUsers, h.listUsers)
	}
}

// createUser godoc
// @Summary Create a staff user
// @Description Creates a staff account and provisions its permissions. Modules default to all.
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user body dto.CreateUserRequest true "User details"
// @Success 201 {object} dto.CreateUserResponse
// @Failure 400 {object} ErrorResponse "Invalid input or email already used"
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/create [post]
func (h *userHandler) createUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.Info("Received request to create user", slog.String("role", string(req.Role)))

	user, perms, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}

	logger.Info("User created successfully", slog.String("new_user_id", user.UserID))
	c.JSON(http.StatusCreated, dto.CreateUserResponse{User: dto.ToUserResponse(user), Permissions: *perms})
}

// listUsers godoc
// @Summary List staff users
// @Tags users
// @Produce  json
// @Success 200 {object} dto.ListUsersResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/list [get]
func (h *userHandler) listUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []domain.UserPermissions{}
	}
	c.JSON(http.StatusOK, dto.ListUsersResponse{Users: users})
}

// getPermissions godoc
// @Summary Get a user's permissions
// @Description Staff may always read their own permissions. Reads never create a record.
// @Tags users
// @Produce  json
// @Param   userId path string true "User ID"
// @Success 200 {object} domain.UserPermissions
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/permissions/{userId} [get]
func (h *userHandler) getPermissions(c *gin.Context) {
	perms, err := h.userService.GetPermissions(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err, "Failed to get permissions")
		return
	}
	c.JSON(http.StatusOK, perms)
}

// updatePermissions godoc
// @Summary Update a user's permissions
// @Tags users
// @Accept  json
// @Produce  json
// @Param   userId path string true "User ID"
// @Param   permissions body dto.UpdatePermissionsRequest true "Fields to change"
// @Success 200 {object} domain.UserPermissions
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /users/permissions/{userId} [put]
func (h *userHandler) updatePermissions(c *gin.Context) {
	var req dto.UpdatePermissionsRequest
	if !bindJSON(c, &req) {
		return
	}

	perms, err := h.userService.UpdatePermissions(c.Request.Context(), c.Param("userId"), req)
	if err != nil {
		respondError(c, err, "Failed to update permissions")
		return
	}
	c.JSON(http.StatusOK, perms)
}
