// Package config loads the protocols file and environment secrets.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"solana-arb-detector/internal/domain"
)

// ProtocolConfig is one [[protocols]] entry in the TOML file.
type ProtocolConfig struct {
	Name          string `toml:"name"`
	ProgramID     string `toml:"program_id"`
	Discriminator string `toml:"discriminator"` // 16 hex chars
}

// File is the root of the protocols TOML file.
type File struct {
	Protocols []ProtocolConfig `toml:"protocols"`
}

// LoadProtocols reads the TOML file at path and resolves each entry into
// a validated domain.Protocol.
func LoadProtocols(path string) ([]domain.Protocol, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode protocols file: %w", err)
	}
	if len(f.Protocols) == 0 {
		return nil, fmt.Errorf("protocols file %s defines no protocols", path)
	}

	seen := make(map[string]struct{}, len(f.Protocols))
	protocols := make([]domain.Protocol, 0, len(f.Protocols))
	for i, pc := range f.Protocols {
		if pc.Name == "" {
			return nil, fmt.Errorf("protocol %d: missing name", i)
		}
		if _, dup := seen[pc.Name]; dup {
			return nil, fmt.Errorf("protocol %q: duplicate name", pc.Name)
		}
		seen[pc.Name] = struct{}{}

		programID, err := domain.AddressFromBase58(pc.ProgramID)
		if err != nil {
			return nil, fmt.Errorf("protocol %q: program_id: %w", pc.Name, err)
		}

		disc, err := domain.DiscriminatorFromHex(pc.Discriminator)
		if err != nil {
			return nil, fmt.Errorf("protocol %q: discriminator: %w", pc.Name, err)
		}

		protocols = append(protocols, domain.Protocol{
			Name:          pc.Name,
			ProgramID:     programID,
			Discriminator: disc,
		})
	}

	return protocols, nil
}

// HeliusAPIKey returns the Helius API key from the environment, loading
// a .env file first when one is present.
func HeliusAPIKey() (string, error) {
	// Missing .env is fine; the variable may be set directly.
	_ = godotenv.Load()

	key := os.Getenv("HELIUS_API_KEY")
	if key == "" {
		return "", fmt.Errorf("HELIUS_API_KEY is not set")
	}
	return key, nil
}
