package feedback

import (
	"fmt"

	"github.com/verte-zerg/typemaster/internal/llm"
)

var localParagraphs = []string{
	"No modo treino, deixe os dedos sobre asdf jkl; e digite no ritmo da respiração para ganhar constância.",
	"A equipe entrou no mapa secreto e precisou digitar comandos rápidos para abrir cada portal.",
	"Na cidade digital, cada tecla certa liga um drone de apoio e cada erro pede calma e foco.",
	"No desafio de {theme}, você alterna velocidade e precisão para manter o combo alto até o fim da fase.",
	"Quando errar, ajuste a postura, volte ao centro do teclado e retome o fluxo sem pressa.",
	"O objetivo é completar textos longos sem quebrar o ritmo, com mãos leves e olhos na tela.",
}

const practiceSystemPrompt = "You write typing practice material for teenagers. Reply with JSON only."

const feedbackSystemPrompt = "You are an upbeat typing coach for teenagers. Reply with JSON only."

func practicePrompt(theme string, minChars int) string {
	return fmt.Sprintf(`Write a fun, engaging practice paragraph for a teenager learning to type.
Theme: %s.
Requirements: between %d and %d characters, common words, some punctuation, a single paragraph.
Language: Portuguese (BR).`, theme, minChars, minChars+180)
}

func feedbackPrompt(wpm, accuracy int) string {
	return fmt.Sprintf("A learner just typed at %d WPM with %d%% accuracy. Give one short, upbeat sentence of feedback.", wpm, accuracy)
}

var practiceTextSchema = &llm.Schema{
	Name:        "practice-text",
	Description: "A single practice paragraph",
	Fields:      []llm.Field{{Name: "text", Description: "The practice paragraph"}},
}

var feedbackSchema = &llm.Schema{
	Name:        "run-feedback",
	Description: "One sentence of feedback",
	Fields:      []llm.Field{{Name: "message", Description: "The feedback sentence"}},
}
