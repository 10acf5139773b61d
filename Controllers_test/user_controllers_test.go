package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lonfo/webpos/controllers"
	"github.com/lonfo/webpos/models"
	"github.com/lonfo/webpos/utils"
)

func setupTestDBForUsers(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func setupUserRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	userCtrl := controllers.NewUserController(db)
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)

	authed := router.Group("/api")
	authed.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
			c.Set("role", "server")
		}
	})
	authed.GET("/profile", userCtrl.GetProfile)
	authed.POST("/logout", userCtrl.Logout)
	authed.POST("/change-password", userCtrl.ChangePassword)
	return router
}

func TestRegisterAndLogin(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db, 0)

	w := postJSON(t, router, "/register", gin.H{
		"name":     "Lonfo",
		"email":    "lonfo@example.com",
		"password": "password123",
		"role":     "server",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registerResp))
	assert.Equal(t, true, registerResp["status"])
	data := registerResp["data"].(map[string]interface{})
	assert.NotNil(t, data["user_id"])

	w = postJSON(t, router, "/login", gin.H{
		"email":    "lonfo@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	assert.Equal(t, true, loginResp["status"])
	data = loginResp["data"].(map[string]interface{})
	token, ok := data["token"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.Equal(t, "server", data["user_role"])
}

func TestLoginWrongPassword(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db, 0)

	hashed, err := bcrypt.GenerateFromPassword([]byte("rightpass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{Name: "Simo", Email: "simo@example.com", Password: string(hashed), Role: "server"}
	require.NoError(t, db.Create(&user).Error)

	w := postJSON(t, router, "/login", gin.H{"email": "simo@example.com", "password": "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, router, "/login", gin.H{"email": "nobody@example.com", "password": "rightpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfile(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{Name: "Lonfo", Email: "lonfo@example.com", Password: string(hashed), Role: "admin"}
	require.NoError(t, db.Create(&user).Error)

	router := setupUserRouter(db, user.ID)

	req, err := http.NewRequest("GET", "/api/profile", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "Lonfo", data["name"])
	assert.Equal(t, "admin", data["role"])
}

func TestChangePassword(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)

	hashed, err := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{Name: "Lonfo", Email: "lonfo@example.com", Password: string(hashed), Role: "server"}
	require.NoError(t, db.Create(&user).Error)

	router := setupUserRouter(db, user.ID)

	w := postJSON(t, router, "/api/change-password", gin.H{
		"old_password": "wrongpass",
		"new_password": "newpassword123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, router, "/api/change-password", gin.H{
		"old_password": "oldpassword",
		"new_password": "newpassword123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.First(&user, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("newpassword123")))
}

func TestLogoutRevokesToken(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db, 1)

	token, err := utils.GenerateToken(1, "server")
	require.NoError(t, err)

	body := bytes.NewBufferString("{}")
	req, err := http.NewRequest("POST", "/api/logout", body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// A revoked token no longer parses.
	_, err = utils.ParseToken(token)
	assert.Error(t, err)
}
