package checkout

import (
	"crypto/rand"
	"fmt"
	"time"
)

// suffixAlphabet — алфавит случайного суффикса номера заказа.
const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const suffixLen = 4

// NumberGenerator производит человекочитаемые номера заказов вида
// PREFIX-YYYYMMDD-XXXX. Генерация сама по себе не защищена от коллизий:
// уникальность гарантирует unique constraint хранилища, а оркестратор
// перегенерирует номер при конфликте вставки.
type NumberGenerator struct {
	prefix string
	now    func() time.Time
}

// NewNumberGenerator создаёт генератор с заданным префиксом.
func NewNumberGenerator(prefix string, now func() time.Time) *NumberGenerator {
	if prefix == "" {
		prefix = "ORD"
	}
	if now == nil {
		now = time.Now
	}
	return &NumberGenerator{prefix: prefix, now: now}
}

// Next возвращает следующий кандидат номера заказа.
func (g *NumberGenerator) Next() (string, error) {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random suffix: %w", err)
	}
	for i := range buf {
		buf[i] = suffixAlphabet[int(buf[i])%len(suffixAlphabet)]
	}

	date := g.now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", g.prefix, date, string(buf)), nil
}
