package main

// General API documentation for swaggo. Run `swag init -g cmd/ollamaui/docs.go -o docs` to regenerate.
//
// @title           ollamaui API
// @version         1.0
// @description     Single-page query form and JSON API in front of a local Ollama server.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
