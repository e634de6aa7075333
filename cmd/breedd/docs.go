package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/breedd/docs.go -o docs`.
//
// @title           breedd API
// @version         1.0
// @description     Two-stage cattle and buffalo breed identification with Grad-CAM explanations and a breed catalog.
//
// @contact.name   breedd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
