package auth_test

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ecotrack.dev/ecotrack/internal/auth"
)

var _ = Describe("Tokens", func() {
	var tokens *auth.Tokens

	BeforeEach(func() {
		var err error
		tokens, err = auth.NewTokens("test-secret", time.Minute)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewTokens", func() {
		It("should require a secret", func() {
			issuer, err := auth.NewTokens("", time.Minute)
			Expect(err).To(HaveOccurred())
			Expect(issuer).To(BeNil())
		})

		It("should fall back to the default ttl", func() {
			issuer, err := auth.NewTokens("secret", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(issuer).NotTo(BeNil())
		})
	})

	Describe("Issue and Verify", func() {
		It("should round-trip subject and role", func() {
			signed, err := tokens.Issue("marie", "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(signed).NotTo(BeEmpty())

			claims, err := tokens.Verify(signed)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Subject).To(Equal("marie"))
			Expect(claims.Role).To(Equal("admin"))
		})

		It("should set expiry from the configured ttl", func() {
			signed, err := tokens.Issue("marie", "user")
			Expect(err).NotTo(HaveOccurred())

			claims, err := tokens.Verify(signed)
			Expect(err).NotTo(HaveOccurred())
			remaining := time.Until(claims.ExpiresAt.Time)
			Expect(remaining).To(BeNumerically(">", 50*time.Second))
			Expect(remaining).To(BeNumerically("<=", time.Minute))
		})
	})

	Describe("Verify", func() {
		It("should reject garbage", func() {
			_, err := tokens.Verify("not.a.token")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject a token signed with a different secret", func() {
			other, err := auth.NewTokens("other-secret", time.Minute)
			Expect(err).NotTo(HaveOccurred())

			signed, err := other.Issue("marie", "user")
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.Verify(signed)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject an expired token", func() {
			now := time.Now().UTC().Add(-time.Hour)
			claims := auth.Claims{
				Role: "user",
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "marie",
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				},
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.Verify(signed)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject a token without a subject", func() {
			claims := jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now()),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.Verify(signed)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject an unsigned token", func() {
			token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
				Subject:   "marie",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			})
			signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.Verify(signed)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})
})
