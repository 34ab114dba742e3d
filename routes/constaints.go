package routes

import (
	"github.com/dwnGnL/adminConsole/ledger"
	"github.com/dwnGnL/adminConsole/pkg/currency"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"gorm.io/gorm"
)

const (
	USD = "USD"
)

type funcGin func(c *gin.Context)

var (
	DB        *gorm.DB
	Ledger    *ledger.Reconciler
	converter *currency.Converter
	console   ConsoleAuth
	validate  = validator.New()
)
