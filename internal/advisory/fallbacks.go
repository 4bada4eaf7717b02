package advisory

// fallback holds the canned answers of one call site: Empty when the service
// answered with no text, Failure when the call did not complete.
type fallback struct {
	Empty   string
	Failure string
}

var (
	discoveryFallback = fallback{
		Empty:   "Sua jornada financeira começou oficialmente! Hoje você deu o primeiro passo para a clareza e liberdade.",
		Failure: "Excelente começo! Você acaba de transformar incerteza em clareza. Esse é o fundamento de qualquer grande patrimônio.",
	}
	opportunityFallback = fallback{
		Empty:   "Considere alocar 80% em Tesouro Selic para segurança e 20% em FIIs para renda mensal isenta.",
		Failure: "Sugerimos manter 70% em ativos de liquidez diária e 30% em dividendos para equilibrar risco e retorno.",
	}
	challengeFallback = fallback{
		Empty:   "Boa escolha! Diversificar é a chave para proteger seu capital enquanto busca rentabilidade.",
		Failure: "Excelente decisão! Alocar recursos com estratégia é o que separa poupadores de investidores de sucesso.",
	}
)
