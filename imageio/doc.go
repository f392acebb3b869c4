// Package imageio loads image files into grayscale rasters. Files are read
// through an afero filesystem; jpeg, png, gif, bmp, tiff and webp content is
// recognized by its header, not its extension.
package imageio
