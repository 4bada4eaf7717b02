package advisory

import (
	"fmt"

	"github.com/dmitrijs2005/patrimonio/internal/models"
)

const discoveryTemplate = `
Você é um coach financeiro empático e motivador do app "PatrimônioPro".
Sua missão é dar um feedback sobre a primeira "foto financeira" do usuário para eliminar o medo e gerar clareza.

Dados do Usuário:
- Patrimônio Total: R$ %s
- Dinheiro Acessível (Liquidez): R$ %s
- Total Investido: R$ %s

Regras:
1. Seja CURTO (máximo 3 frases).
2. Use um tom de comemoração, nunca de crítica.
3. Se o investimento for baixo (menos de R$ 1000), foque em "ter uma base sólida para começar".
4. Se for alto mas disperso, foque na "oportunidade de organizar e potencializar".
5. Idioma: Português do Brasil.
`

const opportunityTemplate = `
Você é a Inteligência Artificial do PatrimônioPro. Analise a situação financeira e dê uma recomendação de alocação de ativos personalizada.

Situação Atual:
- Patrimônio Total: R$ %s
- Liquidez (Bancos/Dinheiro): R$ %s
- Investimentos Atuais: R$ %s

Tarefa:
Gere uma recomendação técnica porém simples de alocação para o capital disponível (ex: 70%% em Tesouro Selic para reserva e 30%% em FIIs para renda).
Foque em como otimizar o que ele já tem. Seja direto e use no máximo 150 caracteres.
Não use introduções, vá direto ao ponto.
`

const challengeTemplate = `
Contexto: O usuário está em um desafio de investimento no app "PatrimônioPro".
Cenário: Ele recebeu R$ %s extras e escolheu investir em: "%s".

Tarefa: Explique em 2 frases POR QUE essa escolha é interessante ou quais cuidados ele deve ter, focando em EDUCAÇÃO FINANCEIRA.
Seja motivador e direto. Use tom amigável.
`

func discoveryPrompt(s models.UserStats) string {
	return fmt.Sprintf(discoveryTemplate, FormatBRL(s.Total()), FormatBRL(s.Liquid()), FormatBRL(s.Invested()))
}

func opportunityPrompt(s models.UserStats) string {
	return fmt.Sprintf(opportunityTemplate, FormatBRL(s.Total()), FormatBRL(s.Liquid()), FormatBRL(s.Invested()))
}

func challengePrompt(choice string, amount float64) string {
	return fmt.Sprintf(challengeTemplate, FormatBRL(amount), choice)
}
