// Package textutil sanitizes client-supplied names for safe filesystem use.
package textutil
