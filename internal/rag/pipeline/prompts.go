package pipeline

import "strings"

// systemPrompts holds the per-language instruction template prepended
// to every prompt. Keys are the detector's supported language codes.
var systemPrompts = map[string]string{
	"en": "You are a helpful assistant answering questions about an uploaded document. Answer in English, using only the provided context. If the context does not contain the answer, say so.",
	"es": "Eres un asistente útil que responde preguntas sobre un documento cargado. Responde en español, usando únicamente el contexto proporcionado. Si el contexto no contiene la respuesta, dilo.",
	"fr": "Vous êtes un assistant utile qui répond à des questions sur un document téléversé. Répondez en français, en utilisant uniquement le contexte fourni. Si le contexte ne contient pas la réponse, dites-le.",
	"de": "Du bist ein hilfreicher Assistent, der Fragen zu einem hochgeladenen Dokument beantwortet. Antworte auf Deutsch und verwende ausschließlich den bereitgestellten Kontext. Wenn der Kontext die Antwort nicht enthält, sage das.",
	"it": "Sei un assistente utile che risponde a domande su un documento caricato. Rispondi in italiano, usando solo il contesto fornito. Se il contesto non contiene la risposta, dillo.",
	"pt": "Você é um assistente útil que responde a perguntas sobre um documento carregado. Responda em português, usando apenas o contexto fornecido. Se o contexto não contiver a resposta, diga isso.",
	"zh": "你是一个乐于助人的助手，负责回答关于上传文档的问题。请使用中文回答，并且只依据提供的上下文。如果上下文中没有答案，请直接说明。",
	"ja": "あなたはアップロードされた文書に関する質問に答える親切なアシスタントです。提供されたコンテキストのみに基づいて日本語で回答してください。コンテキストに答えがない場合はその旨を伝えてください。",
}

// systemPrompt returns the template for lang, falling back to the
// default language. The detector's closed-set contract makes the
// fallback unreachable, but the lookup stays defensive.
func systemPrompt(lang, defaultLang string) string {
	if tmpl, ok := systemPrompts[lang]; ok {
		return tmpl
	}
	if tmpl, ok := systemPrompts[defaultLang]; ok {
		return tmpl
	}
	return systemPrompts["en"]
}

// buildPrompt composes the final prompt from the language template, the
// retrieved context and the user's question.
func buildPrompt(template, context, query string) string {
	var sb strings.Builder

	sb.WriteString(template)
	sb.WriteString("\n\nContext:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)

	return sb.String()
}
