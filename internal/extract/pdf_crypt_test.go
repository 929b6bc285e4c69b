package extract

import (
	"crypto/md5"
	"crypto/rc4"
	"fmt"
)

var pdfPasswordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// pdfPermissions grants everything; only the low 32 bits take part in key derivation.
const pdfPermissions = -4

// pdfCipher encrypts objects with the standard security handler, revision 3, 128-bit RC4.
// The owner and user passwords are the same.
type pdfCipher struct {
	id  []byte
	key []byte
	o   []byte
	u   []byte
}

func newPDFCipher(password string, id []byte) *pdfCipher {
	padded := padPDFPassword(password)

	ownerKey := md5Sum(padded)
	for i := 0; i < 50; i++ {
		ownerKey = md5Sum(ownerKey)
	}
	o := rc4Rounds(ownerKey, padded)

	perm := int32(pdfPermissions)
	p := uint32(perm)
	seed := append(append(append([]byte{}, padded...), o...), byte(p), byte(p>>8), byte(p>>16), byte(p>>24))
	key := md5Sum(append(seed, id...))
	for i := 0; i < 50; i++ {
		key = md5Sum(key)
	}

	u := rc4Rounds(key, md5Sum(append(append([]byte{}, pdfPasswordPad...), id...)))
	u = append(u, make([]byte, 16)...)

	return &pdfCipher{id: id, key: key, o: o, u: u}
}

// encrypt returns data encrypted for object id, generation 0.
func (c *pdfCipher) encrypt(id int, data []byte) []byte {
	objKey := md5Sum(append(append([]byte{}, c.key...), byte(id), byte(id>>8), byte(id>>16), 0, 0))
	out := make([]byte, len(data))
	rc, _ := rc4.NewCipher(objKey)
	rc.XORKeyStream(out, data)
	return out
}

func (c *pdfCipher) trailerEntries() string {
	return fmt.Sprintf("/Encrypt << /Filter /Standard /V 2 /R 3 /Length 128 /P %d /O <%x> /U <%x> >> /ID [<%x> <%x>]",
		pdfPermissions, c.o, c.u, c.id, c.id)
}

func padPDFPassword(password string) []byte {
	return append([]byte(password), pdfPasswordPad...)[:32]
}

// rc4Rounds applies RC4 with the key, then with the key XORed with 1 through 19.
func rc4Rounds(key, data []byte) []byte {
	out := append([]byte{}, data...)
	for i := 0; i <= 19; i++ {
		k := make([]byte, len(key))
		for j := range key {
			k[j] = key[j] ^ byte(i)
		}
		rc, _ := rc4.NewCipher(k)
		rc.XORKeyStream(out, out)
	}
	return out
}

func md5Sum(data []byte) []byte {
	sum := md5.Sum(data)
	return sum[:]
}
