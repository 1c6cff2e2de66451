package cmd

const DESCRIPTION = `
hmectl manages iCloud+ Hide My Email addresses from the terminal.
It signs in with the cookies of an icloud.com browser session, then
generates, reserves, lists and retires anonymous forwarding addresses.
`

const (
	LoginDescription = `The login command validates the cookies of a signed-in
icloud.com browser session and stores them encrypted in the
config directory. Cookies are taken from --cookie, from a browser
cookie store, from $HMECTL_COOKIE or from a prompt, in that order.

Example:
        hmectl login --from-browser auto
        hmectl login --from-browser ~/cookies.txt

`
	LogoutDescription = `The logout command deletes the stored cookies.

Example:
        hmectl logout --forget-key

`
	ServicesDescription = `The services command validates the session and prints
the iCloud web services available to the account.

Example:
        hmectl services

`
	GenerateDescription = `The generate command asks iCloud for new addresses
without reserving them. Use claim to reserve one.

Example:
        hmectl generate --count 3

`
	ClaimDescription = `The claim command reserves an address returned by generate.

Example:
        hmectl claim abc_123@icloud.com --label shopping

`
	ReserveDescription = `The reserve command generates and claims addresses in
one go. If a claim fails, the generated address is printed so it
can be claimed later.

Example:
        hmectl reserve --label newsletter --note "via hmectl"

`
	ListDescription = `The list command prints the addresses of the account.

Example:
        hmectl list --active

`
	UpdateDescription = `The update command replaces the label and note of an
address. ADDRESS may be the e-mail address or its anonymous id.

Example:
        hmectl update abc_123@icloud.com --label shopping

`
	DeactivateDescription = `The deactivate command stops forwarding mail for an address.

Example:
        hmectl deactivate abc_123@icloud.com

`
	ReactivateDescription = `The reactivate command resumes forwarding for an address.

Example:
        hmectl reactivate abc_123@icloud.com

`
	DeleteDescription = `The delete command removes a deactivated address for good.

Example:
        hmectl delete abc_123@icloud.com --force

`
	ConfigDescription = `The config command prints the effective settings after the
config file, the environment and the flags were applied. With
--init it writes them to the config file.

Example:
        hmectl --proxy socks5://127.0.0.1:1080 config --init

`
)
