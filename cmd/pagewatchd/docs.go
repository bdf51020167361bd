package main

// General API documentation for swaggo. Build with -tags swagger to serve it.
//
// @title           pagewatch API
// @version         1.0
// @description     Collector for console and exception events observed by browser test runners.
//
// @contact.name   pagewatch maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
