// Copyright 2025 Veyra Protocol
package resume

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	vcrypto "github.com/veyra-network/vey-core/pkg/crypto"
	vresume "github.com/veyra-network/vey-core/pkg/resume"
	"github.com/veyra-network/vey-core/pkg/vyerr"
	"github.com/veyra-network/vey-core/pkg/zkp"
)

// SkillPublicInputs is published with a skill proof (spec §4.E): the
// declared category, minimum proficiency level, a commitment to the
// full (hidden) skill list, the claimed qualifying count, and the
// experience-years range the qualifying skills must fall within.
type SkillPublicInputs struct {
	Category        string  `json:"category"`
	MinLevel        int     `json:"minLevel"`
	SkillsetCommitment string `json:"skillsetCommitment"`
	Count           int     `json:"count"`
	ExperienceMin   float64 `json:"experienceMin"`
	ExperienceMax   float64 `json:"experienceMax"`
}

type skillWitness struct {
	QualifyingSkills []vresume.Skill `json:"qualifyingSkills"`
}

func skillsetCommitment(skills []vresume.Skill) [32]byte {
	acc := make([]byte, 0, 64*len(skills))
	for _, s := range skills {
		fc := vcrypto.HashConcat(vcrypto.DomainResumeSkill, []byte(s.Name), []byte{0x00}, []byte(s.Category), []byte{0x00}, []byte(fmt.Sprintf("%d", s.Proficiency)))
		acc = append(acc, fc[:]...)
	}
	return vcrypto.Hash(vcrypto.DomainResumeSkill, acc)
}

// GenerateSkill proves the hidden skill list contains at least
// minCount skills in category at or above minLevel, with experience
// years within [expMin, expMax] (spec §4.E). Fails with
// ErrNoQualifyingSkills if the filter yields zero matches.
func GenerateSkill(backend zkp.Backend, allSkills []vresume.Skill, category string, minLevel, minCount int, expMin, expMax float64) (zkp.Proof, error) {
	var qualifying []vresume.Skill
	for _, s := range allSkills {
		if s.Category != category {
			continue
		}
		if s.Proficiency < minLevel {
			continue
		}
		if s.YearsOfExperience < expMin || s.YearsOfExperience > expMax {
			continue
		}
		qualifying = append(qualifying, s)
	}
	if len(qualifying) == 0 {
		return zkp.Proof{}, fmt.Errorf("%w: no skills in category %s meet the declared threshold", vyerr.ErrNoQualifyingSkills, category)
	}
	if len(qualifying) < minCount {
		return zkp.Proof{}, fmt.Errorf("%w: only %d qualifying skills, need %d", vyerr.ErrNoQualifyingSkills, len(qualifying), minCount)
	}

	commitment := skillsetCommitment(allSkills)
	pub := SkillPublicInputs{
		Category:           category,
		MinLevel:            minLevel,
		SkillsetCommitment: hex.EncodeToString(commitment[:]),
		Count:               minCount,
		ExperienceMin:       expMin,
		ExperienceMax:       expMax,
	}
	pubBytes, err := json.Marshal(pub)
	if err != nil {
		return zkp.Proof{}, err
	}
	wit := skillWitness{QualifyingSkills: qualifying}
	witBytes, err := json.Marshal(wit)
	if err != nil {
		return zkp.Proof{}, err
	}
	artifact, err := backend.Prove(zkp.TestCircuit.ID, pubBytes, witBytes)
	if err != nil {
		return zkp.Proof{}, err
	}
	return zkp.Proof{
		Pattern:      zkp.PatternResumeSkill,
		Circuit:      zkp.TestCircuit,
		CreatedAt:    time.Now().UTC(),
		PublicInputs: pubBytes,
		Artifact:     artifact,
	}, nil
}

// VerifySkill checks p's declared category and minimum level against the
// verifier's requirements and that the claimed count meets the minimum.
// The declared experience-years range is not checked.
func VerifySkill(p zkp.Proof, expectedCategory string, expectedMinLevel, expectedMinCount int) error {
	if err := p.RequirePattern(zkp.PatternResumeSkill); err != nil {
		return err
	}
	var pub SkillPublicInputs
	if err := p.DecodePublicInputs(&pub); err != nil {
		return err
	}
	if pub.Category != expectedCategory {
		return fmt.Errorf("%w: skill proof category does not match", vyerr.ErrProofRejected)
	}
	if pub.MinLevel < expectedMinLevel {
		return fmt.Errorf("%w: skill proof min level below requirement", vyerr.ErrProofRejected)
	}
	if pub.Count < expectedMinCount {
		return fmt.Errorf("%w: skill proof count below requirement", vyerr.ErrProofRejected)
	}
	return nil
}
