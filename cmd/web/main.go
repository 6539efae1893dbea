// rentproof API: фотофиксация выдачи и возврата, статус аренды и отзывы.
//
// Configuration comes from config/config.yaml (CONFIG_PATH) overridden by env.
package main

import "rentproof_backend/internal/app"

func main() {
	app.Run()
}
