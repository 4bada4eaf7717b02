package session

// User-facing messages, pt-BR.
const (
	msgRegisterMissing   = "Por favor, preencha todos os campos obrigatórios."
	msgRegisterDuplicate = "Este e-mail já está cadastrado em nosso sistema."
	msgRegisterReport    = "Conta criada! Guia inicial enviado para seu e-mail. ✨"
	msgRegisterOK        = "Sua conta foi criada com sucesso! ✨"

	msgLoginNotFound    = "E-mail não encontrado. Verifique os dados ou cadastre-se."
	msgLoginBadPassword = "Senha incorreta para este usuário."

	msgRecoveryMissing     = "Todos os campos são necessários para a recuperação."
	msgRecoveryNotFound    = "E-mail atual não localizado."
	msgRecoveryBadPassword = "Senha atual incorreta."
	msgRecoveryEmailTaken  = "O novo e-mail já pertence a outra conta."
	msgRecoveryOK          = "Credenciais atualizadas! Acesse agora. ✨"

	msgStorage = "Não foi possível acessar seus dados. Tente novamente."
)
