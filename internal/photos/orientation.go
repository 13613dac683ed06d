package photos

import (
	"bytes"
	"encoding/binary"
	"image"

	"github.com/disintegration/imaging"
)

const (
	orientationTag  = 0x0112
	tiffTypeShort   = 3
	jpegMarkerAPP1  = 0xE1
	jpegMarkerSOS   = 0xDA
	jpegMarkerEOI   = 0xD9
	ifdEntrySize    = 12
	tiffHeaderSize  = 8
	exifHeaderBytes = "Exif\x00\x00"
)

// readOrientation returns the EXIF orientation (1-8) stored in a JPEG APP1
// segment or a TIFF IFD0, or 0 when there is none or the metadata is malformed.
func readOrientation(data []byte, format string) int {
	switch format {
	case "jpeg":
		tiff := exifFromJPEG(data)
		if tiff == nil {
			return 0
		}
		return orientationFromTIFF(tiff)
	case "tiff":
		return orientationFromTIFF(data)
	default:
		return 0
	}
}

func exifFromJPEG(data []byte) []byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		if marker == jpegMarkerSOS || marker == jpegMarkerEOI {
			return nil
		}

		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return nil
		}
		segment := data[pos+4 : pos+2+length]

		if marker == jpegMarkerAPP1 && bytes.HasPrefix(segment, []byte(exifHeaderBytes)) {
			return segment[len(exifHeaderBytes):]
		}
		pos += 2 + length
	}

	return nil
}

func orientationFromTIFF(tiff []byte) int {
	if len(tiff) < tiffHeaderSize {
		return 0
	}

	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return 0
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return 0
	}

	ifd := int(order.Uint32(tiff[4:8]))
	if ifd < tiffHeaderSize || ifd+2 > len(tiff) {
		return 0
	}

	count := int(order.Uint16(tiff[ifd : ifd+2]))
	for i := 0; i < count; i++ {
		entry := ifd + 2 + i*ifdEntrySize
		if entry+ifdEntrySize > len(tiff) {
			return 0
		}
		if order.Uint16(tiff[entry:entry+2]) != orientationTag {
			continue
		}
		if order.Uint16(tiff[entry+2:entry+4]) != tiffTypeShort || order.Uint32(tiff[entry+4:entry+8]) != 1 {
			return 0
		}
		value := int(order.Uint16(tiff[entry+8 : entry+10]))
		if value < 1 || value > 8 {
			return 0
		}
		return value
	}

	return 0
}

// applyOrientation rotates img upright for orientations 3, 6 and 8. Mirrored
// orientations and unknown values leave the image untouched.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3:
		return imaging.Rotate180(img)
	case 6:
		return imaging.Rotate270(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
