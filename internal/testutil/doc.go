// Package testutil holds fixtures shared by package tests: plan builders and
// a fake management service.
package testutil
