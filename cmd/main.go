package main

import (
	"github.com/commercekit/oms/internal/app"
	"github.com/commercekit/oms/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
