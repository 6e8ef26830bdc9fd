package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering business module.
// Each module mounts its own routes (under its own base path) on r.
type Module interface {
	RegisterRoutes(r gin.IRouter)
}
