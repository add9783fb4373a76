package cert

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// serialAlphabet excludes visually confusable characters (0/O, 1/I)
const serialAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateSerial produces a public certificate serial such as
// QT-2509-KX7KM-412: a coarse UTC year+month component plus a random suffix.
// Serials only need collision resistance; the unique index on the
// certificates table is the real authority.
func GenerateSerial() string {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails if the OS entropy source is broken
		panic(err)
	}

	suffix := make([]byte, 5)
	for i := 0; i < 5; i++ {
		suffix[i] = serialAlphabet[int(buf[i])%len(serialAlphabet)]
	}
	tail := binary.BigEndian.Uint16(buf[5:])%900 + 100

	d := time.Now().UTC()
	return fmt.Sprintf("QT-%02d%02d-%s-%d", d.Year()%100, int(d.Month()), suffix, tail)
}
