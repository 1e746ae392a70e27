package auth

import (
	"crypto/subtle"
	"fmt"
	"time"
)

// CodeLength giriş kodunun hane sayısıdır.
const CodeLength = 10

// GenerateCode verilen dakikaya ait tek geçerli giriş kodunu üretir.
// Kod hiçbir yerde saklanmaz; her doğrulamada yeniden hesaplanır ve dakika
// değişince geçersiz olur. now çağıranın saat diliminde yorumlanır.
func GenerateCode(now time.Time) string {
	day := pad2(now.Day())
	month := pad2(now.Month())
	product := pad2(digitSum(day) * digitSum(month))

	year := fmt.Sprintf("%04d", now.Year())
	left := string([]byte{year[0], product[0], year[1]})
	right := string([]byte{year[2], product[1], year[3]})

	hh := pad2(now.Hour())
	mm := pad2(now.Minute())
	inner := pad2(digit(hh[1]) * digit(mm[0]))
	outer := pad2(digit(hh[0]) * digit(mm[1]))

	return string(outer[0]) + left + inner + right + string(outer[1])
}

// Verify gönderilen kodun now anındaki kodla aynı olup olmadığını söyler.
func Verify(code string, now time.Time) bool {
	want := GenerateCode(now)
	return subtle.ConstantTimeCompare([]byte(code), []byte(want)) == 1
}

func pad2[T ~int](n T) string {
	return fmt.Sprintf("%02d", int(n))
}

func digit(b byte) int {
	return int(b - '0')
}

func digitSum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += digit(s[i])
	}
	return sum
}
