package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/projecthub/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":3000")
//	-g string   admin gRPC (health) bind address
//	-d string   PostgreSQL DSN
//	-p string   API prefix
//	-r string   AWS region
//	-u string   Cognito user pool id
//	-i string   Cognito app client id
//	-s string   name of the app client secret in Secrets Manager
//	-o string   UI origin allowed by CORS
//	-l string   log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-p", "-r", "-u", "-i", "-s", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.AdminAddrGRPC, "g", config.AdminAddrGRPC, "address and port of the gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.APIPrefix, "p", config.APIPrefix, "API prefix")
	fs.StringVar(&config.AWSRegion, "r", config.AWSRegion, "AWS region")
	fs.StringVar(&config.CognitoUserPoolID, "u", config.CognitoUserPoolID, "Cognito user pool id")
	fs.StringVar(&config.CognitoClientID, "i", config.CognitoClientID, "Cognito app client id")
	fs.StringVar(&config.CognitoClientSecretName, "s", config.CognitoClientSecretName, "app client secret name")
	fs.StringVar(&config.UIDomain, "o", config.UIDomain, "UI origin")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
