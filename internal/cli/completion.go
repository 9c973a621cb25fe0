package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BashCompletion is the bash completion script for vendorctl.
const BashCompletion = `#!/bin/bash
# Bash completion for vendorctl

_vendorctl_completion() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    local commands="status login logout stores switch otp reset-password orders products completion help"
    local global_flags="--config --env --log-level"

    case "${prev}" in
        otp)
            COMPREPLY=( $(compgen -W "send verify" -- ${cur}) )
            return 0
            ;;
        products)
            COMPREPLY=( $(compgen -W "create delete" -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            return 0
            ;;
        --config|--env)
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        --log-level)
            COMPREPLY=( $(compgen -W "debug info warn error" -- ${cur}) )
            return 0
            ;;
    esac

    if [[ ${cur} == -* ]]; then
        COMPREPLY=( $(compgen -W "${global_flags}" -- ${cur}) )
        return 0
    fi
    COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
    return 0
}

complete -F _vendorctl_completion vendorctl
`

// ZshCompletion is the zsh completion script for vendorctl.
const ZshCompletion = `#compdef vendorctl

_vendorctl() {
    local -a commands
    commands=(
        'status:Show the current session'
        'login:Log in with phone and password'
        'logout:Clear the saved session'
        'stores:List stores and branches'
        'switch:Select the active store'
        'otp:Send or verify a password-reset OTP'
        'reset-password:Set a new password with an OTP'
        'orders:List orders for the active store'
        'products:Create or delete products'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '--config[Configuration file path]:file:_files' \
        '--env[Dotenv file path]:file:_files' \
        '--log-level[Log level]:level:(debug info warn error)' \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                otp) _values 'action' send verify ;;
                products) _values 'action' create delete ;;
                completion) _values 'shell' bash zsh fish ;;
            esac
            ;;
    esac
}

_vendorctl "$@"
`

// FishCompletion is the fish completion script for vendorctl.
const FishCompletion = `# Fish completion for vendorctl

complete -c vendorctl -f -n "__fish_use_subcommand" -a "status" -d "Show the current session"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "login" -d "Log in with phone and password"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "logout" -d "Clear the saved session"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "stores" -d "List stores and branches"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "switch" -d "Select the active store"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "otp" -d "Send or verify a password-reset OTP"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "reset-password" -d "Set a new password with an OTP"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "orders" -d "List orders for the active store"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "products" -d "Create or delete products"
complete -c vendorctl -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

complete -c vendorctl -f -n "__fish_seen_subcommand_from otp" -a "send verify"
complete -c vendorctl -f -n "__fish_seen_subcommand_from products" -a "create delete"
complete -c vendorctl -f -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"

complete -c vendorctl -l config -r -d "Configuration file path"
complete -c vendorctl -l env -r -d "Dotenv file path"
complete -c vendorctl -l log-level -x -a "debug info warn error" -d "Log level"
`

func completionScript(shell string) (string, error) {
	switch shell {
	case "bash":
		return BashCompletion, nil
	case "zsh":
		return ZshCompletion, nil
	case "fish":
		return FishCompletion, nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}
}

// GenerateCompletion writes the completion script for shell to w.
func GenerateCompletion(w io.Writer, shell string) error {
	script, err := completionScript(shell)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, script)
	return err
}

// InstallCompletion writes the script under home and returns its path.
func InstallCompletion(home, shell string) (string, error) {
	script, err := completionScript(shell)
	if err != nil {
		return "", err
	}
	if home == "" {
		if home, err = os.UserHomeDir(); err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
	}

	var installPath string
	switch shell {
	case "bash":
		installPath = filepath.Join(home, ".bash_completion.d", "vendorctl")
	case "zsh":
		installPath = filepath.Join(home, ".zsh", "completion", "_vendorctl")
	case "fish":
		installPath = filepath.Join(home, ".config", "fish", "completions", "vendorctl.fish")
	}
	if err := os.MkdirAll(filepath.Dir(installPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create completion directory: %w", err)
	}
	if err := os.WriteFile(installPath, []byte(script), 0o644); err != nil {
		return "", fmt.Errorf("failed to write completion script: %w", err)
	}
	return installPath, nil
}
