// Package deps checks the availability of the external tools downmix
// shells out to.
package deps
