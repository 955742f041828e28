package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/example/lessonsched/cmd"

	_ "time/tzdata"
)

func init() {
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

func main() {
	cmd.Execute()
}
