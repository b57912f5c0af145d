package catalog

import "github.com/Chitopro2255V/kichewebapp/internal/domain"

var defaultContent = []struct {
	level   domain.Level
	lessons []lessonJSON
}{
	{
		level: domain.LevelBasic,
		lessons: []lessonJSON{
			{
				ID:    1,
				Title: "Saludos Básicos",
				Kind:  "vocabulario",
				Content: []wordJSON{
					{Target: "Saqarik", Gloss: "Buenos días", Media: "sol.png"},
					{Target: "Xqa q'ij", Gloss: "Buenas tardes", Media: "tarde.png"},
					{Target: "Xokaq'ab'", Gloss: "Buenas noches", Media: "noche.png"},
					{Target: "Utz awach?", Gloss: "¿Cómo estás?", Media: "saludo.png"},
					{Target: "Utz tinimit", Gloss: "Estoy bien", Media: "bien.png"},
				},
			},
			{
				ID:    2,
				Title: "Números 1-10",
				Kind:  "numeros",
				Content: []wordJSON{
					{Target: "Jun", Gloss: "Uno", Media: "1.png"},
					{Target: "Kieb'", Gloss: "Dos", Media: "2.png"},
					{Target: "Oxib'", Gloss: "Tres", Media: "3.png"},
					{Target: "Kajib'", Gloss: "Cuatro", Media: "4.png"},
					{Target: "Job'", Gloss: "Cinco", Media: "5.png"},
				},
			},
		},
	},
	{
		level: domain.LevelIntermediate,
		lessons: []lessonJSON{
			{
				ID:    3,
				Title: "Familia",
				Kind:  "vocabulario",
				Content: []wordJSON{
					{Target: "Na", Gloss: "Madre", Media: "madre.png"},
					{Target: "Te", Gloss: "Padre", Media: "padre.png"},
					{Target: "Ali", Gloss: "Hijo/Hija", Media: "hijo.png"},
					{Target: "Achijab'", Gloss: "Hermano", Media: "hermano.png"},
				},
			},
		},
	},
}

// Default returns the built-in lessons used when no content file exists.
func Default() *Catalog {
	b := newBuilder()
	for _, lvl := range defaultContent {
		for _, l := range lvl.lessons {
			if err := b.addLesson(lvl.level, l); err != nil {
				panic(err)
			}
		}
	}
	return b.build()
}
