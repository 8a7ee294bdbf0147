// @title           whatsclone API
// @version         1.0
// @description     One-to-one chat backend with realtime push.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "whatsclone/internal/app"

func main() {
	app.Run()
}
