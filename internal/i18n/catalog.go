// Package i18n holds the static localization catalog and the language
// switch. Dictionaries are compiled in; lookups fall back from the
// requested language to the default language to the key itself, so a
// missing translation never breaks rendering.
package i18n

import "errors"

// DefaultLanguage is what a fresh install renders.
const DefaultLanguage = "en"

var ErrUnknownLanguage = errors.New("unknown language")

// Catalog is an immutable set of per-language dictionaries.
type Catalog struct {
	defaultLang string
	tables      map[string]map[string]string
}

// NewCatalog returns the built-in English/Spanish catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		defaultLang: DefaultLanguage,
		tables: map[string]map[string]string{
			"en": tableEN,
			"es": tableES,
		},
	}
}

// Languages lists the available language codes, default first.
func (c *Catalog) Languages() []string {
	out := []string{c.defaultLang}
	for lang := range c.tables {
		if lang != c.defaultLang {
			out = append(out, lang)
		}
	}
	return out
}

// Has reports whether the catalog carries the language.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.tables[lang]
	return ok
}

// T resolves key in lang, falling back to the default language and then
// to the key itself.
func (c *Catalog) T(lang, key string) string {
	if table, ok := c.tables[lang]; ok {
		if v, ok := table[key]; ok {
			return v
		}
	}
	if v, ok := c.tables[c.defaultLang][key]; ok {
		return v
	}
	return key
}

// Table returns the full dictionary for lang overlaid on the default
// dictionary, so every default key resolves. Unknown languages fail with
// ErrUnknownLanguage.
func (c *Catalog) Table(lang string) (map[string]string, error) {
	requested, ok := c.tables[lang]
	if !ok {
		return nil, ErrUnknownLanguage
	}
	out := make(map[string]string, len(tableEN))
	for k, v := range c.tables[c.defaultLang] {
		out[k] = v
	}
	for k, v := range requested {
		out[k] = v
	}
	return out, nil
}

var tableEN = map[string]string{
	"nav.dashboard":       "Dashboard",
	"nav.employees":       "Employees",
	"nav.customers":       "Customers",
	"nav.suppliers":       "Suppliers",
	"nav.inventory":       "Inventory",
	"nav.sales":           "Sales",
	"nav.invoices":        "Invoices",
	"nav.salary-payments": "Salary Payments",
	"nav.reports":         "Reports",
	"nav.settings":        "Settings",

	"login.title":    "Sign in",
	"login.username": "Username",
	"login.password": "Password",
	"login.submit":   "Sign in",
	"login.missing":  "Please enter a username and password",
	"login.invalid":  "Invalid username or password",
	"login.inactive": "This account has been deactivated",

	"logout.confirm": "Are you sure you want to sign out?",
	"logout.action":  "Sign out",

	"toast.welcome":         "Welcome back",
	"toast.signed-out":      "You have been signed out",
	"toast.session-expired": "Your session has expired, please sign in again",

	"settings.title":       "Settings",
	"settings.language":    "Language",
	"settings.theme":       "Theme",
	"settings.theme-light": "Light",
	"settings.theme-dark":  "Dark",
	"settings.profile":     "Profile",
	"settings.saved":       "Settings saved",

	"update.available":  "A new version is available",
	"update.up-to-date": "You are on the latest version",

	"common.save":    "Save",
	"common.cancel":  "Cancel",
	"common.close":   "Close",
	"common.loading": "Loading...",
	"common.search":  "Search",
	"common.actions": "Actions",
	"common.export":  "Export",
}

var tableES = map[string]string{
	"nav.dashboard":       "Panel",
	"nav.employees":       "Empleados",
	"nav.customers":       "Clientes",
	"nav.suppliers":       "Proveedores",
	"nav.inventory":       "Inventario",
	"nav.sales":           "Ventas",
	"nav.invoices":        "Facturas",
	"nav.salary-payments": "Pagos de Salarios",
	"nav.reports":         "Informes",
	"nav.settings":        "Configuración",

	"login.title":    "Iniciar sesión",
	"login.username": "Usuario",
	"login.password": "Contraseña",
	"login.submit":   "Entrar",
	"login.missing":  "Introduzca usuario y contraseña",
	"login.invalid":  "Usuario o contraseña incorrectos",
	"login.inactive": "Esta cuenta ha sido desactivada",

	"logout.confirm": "¿Seguro que desea cerrar la sesión?",
	"logout.action":  "Cerrar sesión",

	"toast.welcome":         "Bienvenido de nuevo",
	"toast.signed-out":      "Ha cerrado la sesión",
	"toast.session-expired": "Su sesión ha caducado, inicie sesión de nuevo",

	"settings.title":       "Configuración",
	"settings.language":    "Idioma",
	"settings.theme":       "Tema",
	"settings.theme-light": "Claro",
	"settings.theme-dark":  "Oscuro",
	"settings.profile":     "Perfil",
	"settings.saved":       "Configuración guardada",

	"update.available":  "Hay una nueva versión disponible",
	"update.up-to-date": "Está en la última versión",

	"common.save":    "Guardar",
	"common.cancel":  "Cancelar",
	"common.close":   "Cerrar",
	"common.loading": "Cargando...",
	"common.search":  "Buscar",
	"common.actions": "Acciones",
	"common.export":  "Exportar",
}
