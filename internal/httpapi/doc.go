// Package httpapi exposes caption alignment and scene timing over HTTP for the
// article admin tool. Handlers are pure: they never invoke speech engines.
package httpapi
