package checkout

// Config собирает пороги и константы checkout-ядра в одном месте,
// чтобы они не были рассыпаны по коду в виде магических чисел.
type Config struct {
	// PriceDriftPercent — допустимое расхождение цены корзины и каталога
	// в процентах. Выше порога позиция блокирует checkout. Ноль — валидная
	// политика «любое изменение цены блокирует»; отрицательное значение
	// означает «не задано» и заменяется значением по умолчанию.
	PriceDriftPercent float64
	// TaxMinor — placeholder налога в минимальных единицах.
	TaxMinor int64
	// OrderNumberPrefix — префикс человекочитаемого номера заказа.
	OrderNumberPrefix string
	// OrderNumberAttempts — число попыток генерации номера при конфликте
	// уникальности.
	OrderNumberAttempts int
}

// DefaultConfig возвращает значения по умолчанию.
func DefaultConfig() Config {
	return Config{
		PriceDriftPercent:   10,
		TaxMinor:            0,
		OrderNumberPrefix:   "ORD",
		OrderNumberAttempts: 5,
	}
}

func (c Config) withDefaults() Config {
	if c.PriceDriftPercent < 0 {
		c.PriceDriftPercent = 10
	}
	if c.OrderNumberPrefix == "" {
		c.OrderNumberPrefix = "ORD"
	}
	if c.OrderNumberAttempts <= 0 {
		c.OrderNumberAttempts = 5
	}
	return c
}
