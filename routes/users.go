package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/dwnGnL/adminConsole/pkg/e"
	"github.com/dwnGnL/adminConsole/pkg/pretty"
	"github.com/dwnGnL/adminConsole/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type adminReq struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
	FIO      string `json:"fio" validate:"max=50"`
	IsAdmin  bool   `json:"is_admin"`
}

// CreateAdmin adds a console account that can log in through /login.
func CreateAdmin(c *gin.Context) {
	var req adminReq

	if err := c.ShouldBindJSON(&req); err != nil {
		e.With(e.BadRequest(err)).Write(c)
		return
	}
	if err := validate.Struct(req); err != nil {
		e.With(err).Write(c)
		return
	}

	login := strings.ToLower(strings.TrimSpace(req.Login))

	if ok := utils.ValidateUserStr(login, 4, 20); !ok {
		e.With(e.BadRequestf("login must be 4 to 20 printable latin characters")).Write(c)
		return
	}

	if ok := utils.ValidateUserStr(req.Password, 8, 20); !ok {
		e.With(e.BadRequestf("password must be 8 to 20 printable latin characters")).Write(c)
		return
	}

	admin := models.Admin{Login: login, FIO: strings.TrimSpace(req.FIO), IsAdmin: req.IsAdmin}
	admin.Salt, admin.Password = utils.HashPassword(req.Password)

	err := DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Admin{}).Where("login = ?", login).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return e.BadRequestf("admin with this login already exists")
		}
		return tx.Create(&admin).Error
	})
	if err != nil {
		e.With(err).Write(c)
		return
	}

	pretty.Logln("admin created:", admin.Login)
	c.JSON(http.StatusCreated, gin.H{"message": "Admin created", "id": admin.ID})
}

///---------------------------------------------------------------------------------------------------------------------Users

func ListUsers(c *gin.Context) {
	var users []models.User

	if err := DB.WithContext(c.Request.Context()).Order("id desc").Find(&users).Error; err != nil {
		e.With(err).Write(c)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns the user with the payments that make up their counters.
func GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := DB.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = e.ErrNotFound
		}
		e.With(err).Msg(notFoundMsg(err, "User not found")).Write(c)
		return
	}

	payments, err := Ledger.ListByUser(c.Request.Context(), id)
	if err != nil {
		e.With(err).Write(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "payments": payments})
}

// AuditUser compares the user's counters with the sum of their payments.
func AuditUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	report, err := Ledger.Audit(c.Request.Context(), id)
	if err != nil {
		e.With(err).Msg(notFoundMsg(err, "User not found")).Write(c)
		return
	}
	if len(report) == 0 {
		e.With(e.ErrNotFound).Msg("User not found").Write(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drift": report[0], "inSync": report[0].InSync()})
}
