// Package testsupport provides fixtures shared by package tests: temp-dir
// configs, synthetic .pptx archives, and encoded image payloads.
package testsupport
