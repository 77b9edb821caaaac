package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSecretsDir - стандартный путь Docker Secrets.
const DefaultSecretsDir = "/run/secrets"

// ReadSecret читает секрет из файла в стандартном пути Docker Secrets.
func ReadSecret(secretName string) (string, error) {
	return ReadSecretFrom(DefaultSecretsDir, secretName)
}

// ReadSecretFrom читает секрет из файла dir/secretName.
// Fallback на env var не делаем, чтобы поведение было консистентным.
func ReadSecretFrom(dir, secretName string) (string, error) {
	filePath := filepath.Join(dir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadOptionalSecret возвращает "" без ошибки, если файла секрета нет.
func ReadOptionalSecret(dir, secretName string) (string, error) {
	secret, err := ReadSecretFrom(dir, secretName)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	return secret, err
}
