// Package imaging normalizes extracted slide images into JPEG artifacts and
// prepares artifacts for terminal display.
//
// Decoders for PNG, JPEG, GIF, BMP, TIFF and WebP are registered here.
package imaging
