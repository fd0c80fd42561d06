package util

import "testing"

func TestValidateCPF(t *testing.T) {
	cases := []struct {
		name  string
		cpf   string
		valid bool
	}{
		{"válido", "529.982.247-25", true},
		{"dígitos repetidos", "111.111.111-11", false},
		{"checksum errado", "529.982.247-26", false},
		{"sem máscara", "52998224725", false},
		{"curto", "529.982.247-2", false},
		{"vazio", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCPF(tc.cpf)
			if tc.valid && err != nil {
				t.Fatalf("cpf %q deveria ser válido: %v", tc.cpf, err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("cpf %q deveria ser inválido", tc.cpf)
			}
		})
	}
}

func TestIsValidCPFRejectsRepeatedEvenWithMask(t *testing.T) {
	// passa no regex de formato mas falha no checksum
	if IsValidCPF("111.111.111-11") {
		t.Fatal("sequência repetida não pode passar")
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("pessoa@exemplo.com.br"); err != nil {
		t.Fatalf("email válido rejeitado: %v", err)
	}
	if err := ValidateEmail("sem-arroba"); err == nil {
		t.Fatal("email inválido aceito")
	}
	if err := ValidateEmail("  "); err == nil {
		t.Fatal("email vazio aceito")
	}
}

func TestRandomCodeLength(t *testing.T) {
	code, err := RandomCode(5)
	if err != nil {
		t.Fatalf("gerar código: %v", err)
	}
	if len(code) != 5 {
		t.Fatalf("esperado 5 caracteres, veio %d", len(code))
	}

	second, err := RandomCode(5)
	if err != nil {
		t.Fatalf("gerar código: %v", err)
	}
	third, err := RandomCode(5)
	if err != nil {
		t.Fatalf("gerar código: %v", err)
	}
	if code == second && code == third {
		t.Fatal("códigos consecutivos idênticos")
	}
}
