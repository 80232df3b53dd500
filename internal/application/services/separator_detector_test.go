package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSeparator(t *testing.T) {
	detector := NewSeparatorDetector()

	tests := []struct {
		name string
		text string
		want rune
	}{
		{
			name: "semicolon consistent across three lines",
			text: "Paciente_ID;Fecha;Contenido\nP001;2024-03-05;Nota uno\nP002;2024-03-06;Nota dos",
			want: ';',
		},
		{
			name: "comma detected",
			text: "Paciente_ID,Fecha,Contenido\nP001,2024-03-05,Nota uno",
			want: ',',
		},
		{
			name: "tab detected",
			text: "Paciente_ID\tFecha\nP001\t2024-03-05",
			want: '\t',
		},
		{
			name: "pipe detected",
			text: "Paciente_ID|Fecha\nP001|2024-03-05",
			want: '|',
		},
		{
			name: "empty file defaults to comma",
			text: "",
			want: ',',
		},
		{
			name: "single line defaults to comma",
			text: "Paciente_ID;Fecha;Contenido",
			want: ',',
		},
		{
			name: "inconsistent counts default to comma",
			text: "a;b;c\na;b\na",
			want: ',',
		},
		{
			name: "comma wins over semicolon when both are consistent",
			text: "a,b;c\nd,e;f",
			want: ',',
		},
		{
			name: "blank lines are skipped when sampling",
			text: "\n\nPaciente_ID;Fecha\nP001;2024-03-05",
			want: ';',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.Detect(tt.text))
		})
	}
}
