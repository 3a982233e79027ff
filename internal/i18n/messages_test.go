package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestNew_PicksLanguage(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"", language.Ukrainian},
		{"uk", language.Ukrainian},
		{"uk-UA", language.Ukrainian},
		{"en", language.English},
		{"en-GB", language.English},
		{"de", language.Ukrainian},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			base, _ := New(tt.locale).Language().Base()
			want, _ := tt.want.Base()
			assert.Equal(t, want, base)
		})
	}
}

func TestMessages(t *testing.T) {
	uk := New("uk")
	assert.Equal(t, "Виникла помилка", uk.GenericError())
	assert.Equal(t, "Кількість оновлено", uk.QuantityUpdated())
	assert.Equal(t, "Ви впевнені, що хочете видалити цей товар з кошика?", uk.ConfirmRemove())

	en := New("en-US")
	assert.Equal(t, "Something went wrong", en.GenericError())
	assert.Equal(t, "Quantity updated", en.QuantityUpdated())
	assert.Equal(t, "Are you sure you want to remove this item from the cart?", en.ConfirmRemove())
}
