// Package testsupport builds isolated configurations, stub external binaries,
// and fixture files for tests across vibecut packages.
package testsupport
