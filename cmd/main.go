package main

import (
	"github.com/feastline/order-svc/internal/app"
	"github.com/feastline/order-svc/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
