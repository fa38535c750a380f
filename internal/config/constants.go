package config

import "strings"

const SourceFileExt = ".envx"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".envx"}

// BundleFileExt is the extension written by `envx build`
const BundleFileExt = ".envxb"

// DefaultEnvName is used when no environment is selected by flag, variable or config.
const DefaultEnvName = "development"

// Environment variables consulted (in order) for the environment name.
var EnvNameVariables = []string{"ENVX_ENV", "NODE_ENV"}

// PrivatePrefix marks globals that are never exported to the host.
const PrivatePrefix = "_"

// ThisName is the implicit receiver binding inside method calls.
const ThisName = "this"

// Built-in function names
const (
	PrintlnFuncName = "println"
	TypeOfFuncName  = "typeof"
)

// Built-in type names
const (
	NumberTypeName   = "Number"
	StringTypeName   = "String"
	BoolTypeName     = "Bool"
	NullTypeName     = "Null"
	ArrayTypeName    = "Array"
	ObjectTypeName   = "Object"
	FunctionTypeName = "Function"
	ErrorTypeName    = "Error"
)

// Config file names searched by FindConfig, in priority order.
var ConfigFileNames = []string{"envx.yaml", "envx.yml", "envx.toml"}

// IsSourceFile reports whether path has a recognized source extension.
func IsSourceFile(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from path.
func TrimSourceExt(path string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}

// IsPrivateName reports whether a global is hidden from host queries.
func IsPrivateName(name string) bool {
	return strings.HasPrefix(name, PrivatePrefix)
}

// Bundle header: magic followed by a format version byte.
const (
	BundleMagic   = "ENVB"
	BundleVersion = byte(1)
)
