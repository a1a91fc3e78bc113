// Package testsupport builds isolated configurations, fixture files, and
// stub engine binaries for package tests.
package testsupport
