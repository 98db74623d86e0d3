/*
Copyright 2026 The Chunkq Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package queue

import (
	"encoding/binary"
	"hash/crc32"
)

// On-disk frame layout, little-endian throughout (the source this
// design is drawn from used host byte order here, making chunk files
// non-portable across architectures; that bug is not inherited):
//
//	bytes 0..3    payload length L, uint32 LE
//	bytes 4..11   timestamp, uint64 LE, seconds since Unix epoch
//	bytes 12..12+L-1  payload
//	bytes 12+L..12+L+3  CRC32 (IEEE) of bytes 0..12+L-1
//
// The trailing checksum is additive relative to the original 12-byte
// header; it lets a reader tell a torn append at the tail of a chunk
// from a genuinely new, not-yet-expired record without relying solely
// on the timestamp plausibility window below.
const (
	frameHeaderSize         = 12
	frameChecksumSize       = 4
	frameOverhead           = frameHeaderSize + frameChecksumSize
	frameValidityWindowSecs = 10 * 86400
)

// encodeFrame builds the on-disk bytes for one record.
func encodeFrame(ts uint64, payload []byte) []byte {
	buf := make([]byte, frameOverhead+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint64(buf[4:12], ts)
	copy(buf[frameHeaderSize:], payload)
	crc := crc32.ChecksumIEEE(buf[:frameHeaderSize+len(payload)])
	binary.LittleEndian.PutUint32(buf[frameHeaderSize+len(payload):], crc)
	return buf
}

// decodeHeader reads the length and timestamp out of a 12-byte header.
func decodeHeader(head []byte) (length uint32, ts uint64) {
	length = binary.LittleEndian.Uint32(head[0:4])
	ts = binary.LittleEndian.Uint64(head[4:12])
	return
}

// verifyChecksum reports whether want matches the CRC32 of header+payload.
func verifyChecksum(header, payload []byte, want uint32) bool {
	h := crc32.NewIEEE()
	h.Write(header)
	h.Write(payload)
	return h.Sum32() == want
}
