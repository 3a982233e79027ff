// Package i18n holds the few fixed strings the cart client shows on its own;
// everything else comes from the server already localized.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	keyGenericError    = "cart.generic_error"
	keyQuantityUpdated = "cart.quantity_updated"
	keyConfirmRemove   = "cart.confirm_remove"
)

var supported = []language.Tag{language.Ukrainian, language.English}

var matcher = language.NewMatcher(supported)

var cat = buildCatalog()

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Ukrainian))
	entries := map[language.Tag]map[string]string{
		language.Ukrainian: {
			keyGenericError:    "Виникла помилка",
			keyQuantityUpdated: "Кількість оновлено",
			keyConfirmRemove:   "Ви впевнені, що хочете видалити цей товар з кошика?",
		},
		language.English: {
			keyGenericError:    "Something went wrong",
			keyQuantityUpdated: "Quantity updated",
			keyConfirmRemove:   "Are you sure you want to remove this item from the cart?",
		},
	}
	for tag, msgs := range entries {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

type Messages struct {
	tag language.Tag
	p   *message.Printer
}

// New picks the closest supported language for locale (e.g. "en-GB", "uk").
// Unknown or empty locales get Ukrainian.
func New(locale string) Messages {
	_, i := language.MatchStrings(matcher, locale)
	tag := supported[i]
	return Messages{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

func (m Messages) Language() language.Tag { return m.tag }

func (m Messages) GenericError() string { return m.p.Sprintf(keyGenericError) }

func (m Messages) QuantityUpdated() string { return m.p.Sprintf(keyQuantityUpdated) }

func (m Messages) ConfirmRemove() string { return m.p.Sprintf(keyConfirmRemove) }
