package datanorm

import "bytes"

// Classification describes what an uploaded payload looks like before any
// decoder runs. It keeps the delimited-text decoder away from binary input.
type Classification string

const (
	ClassWorkbook       Classification = "workbook"
	ClassLegacyWorkbook Classification = "legacy_workbook"
	ClassDelimited      Classification = "delimited"
	ClassBinary         Classification = "binary"
	ClassEmpty          Classification = "empty"
)

var (
	zipMagic = []byte("PK\x03\x04")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

const classifySample = 8192

// Classify inspects the leading bytes of data.
func Classify(data []byte) Classification {
	if len(bytes.TrimSpace(data)) == 0 {
		return ClassEmpty
	}
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return ClassWorkbook
	case bytes.HasPrefix(data, cfbMagic):
		return ClassLegacyWorkbook
	}
	sample := data
	if len(sample) > classifySample {
		sample = sample[:classifySample]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return ClassBinary
	}
	return ClassDelimited
}
