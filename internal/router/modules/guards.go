package modules

import "github.com/gin-gonic/gin"

// Guards are the authentication and authorization gates shared by modules.
// Admin must always be mounted after SignIn.
type Guards struct {
	SignIn gin.HandlerFunc
	Admin  gin.HandlerFunc
}
