package util

import (
	"net/mail"
	"regexp"
	"strings"
)

var cpfPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)

// ValidationError marca erros de entrada do usuário, recuperáveis e
// reportados campo a campo pela camada HTTP.
type ValidationError struct {
	msg string
}

func (e ValidationError) Error() string {
	return e.msg
}

// Invalid cria um erro de validação.
func Invalid(msg string) error {
	return ValidationError{msg: msg}
}

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Invalid("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Invalid("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return Invalid("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return Invalid(field + " obrigatório")
	}
	return nil
}

// ValidateCPF exige o formato NNN.NNN.NNN-NN e dígitos verificadores corretos.
func ValidateCPF(cpf string) error {
	cpf = strings.TrimSpace(cpf)
	if !cpfPattern.MatchString(cpf) {
		return Invalid("cpf deve seguir o formato 000.000.000-00")
	}
	if !IsValidCPF(cpf) {
		return Invalid("cpf inválido")
	}
	return nil
}

// IsValidCPF aplica o cálculo de módulo 11 dos dois dígitos verificadores.
// Sequências de dígito repetido (ex.: 111.111.111-11) são rejeitadas.
func IsValidCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != 11 {
		return false
	}

	repeated := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += digits[i] * (10 - i)
	}
	first := (sum * 10) % 11
	if first == 10 {
		first = 0
	}
	if first != digits[9] {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += digits[i] * (11 - i)
	}
	second := (sum * 10) % 11
	if second == 10 {
		second = 0
	}
	return second == digits[10]
}
